package notification

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"noithat_leads/config"
	leadmodels "noithat_leads/internal/api/lead/models"
)

func TestBuildLeadCreatedMail_CanhBaoTrungLap(t *testing.T) {
	lead := leadmodels.Lead{
		Name:                 "Nguyễn Văn A",
		Phone:                "0912 345 678",
		Source:               leadmodels.SourceQuoteForm,
		IsPotentialDuplicate: true,
		PotentialDuplicateIDs: []primitive.ObjectID{
			primitive.NewObjectID(),
			primitive.NewObjectID(),
		},
	}

	subject, body := buildLeadCreatedMail(&lead)

	if !strings.Contains(subject, "Nguyễn Văn A") {
		t.Errorf("subject %q phải chứa tên lead", subject)
	}
	if !strings.Contains(body, "Trùng SĐT với 2 lead cùng nguồn") {
		t.Error("thân email phải có dòng cảnh báo trùng lặp với số lead cùng nguồn")
	}
}

func TestBuildLeadCreatedMail_GhiChuKhacNguon(t *testing.T) {
	lead := leadmodels.Lead{
		Name:             "Trần Thị B",
		Phone:            "0987654321",
		Source:           leadmodels.SourceContactForm,
		HasRelatedLeads:  true,
		RelatedLeadCount: 1,
	}

	_, body := buildLeadCreatedMail(&lead)

	if !strings.Contains(body, "Cùng SĐT với 1 lead ở nguồn khác") {
		t.Error("thân email phải có ghi chú lead liên quan khác nguồn")
	}
	if strings.Contains(body, "Cảnh báo") {
		t.Error("không có trùng lặp cùng nguồn thì không được hiện cảnh báo")
	}
}

func TestBuildLeadCreatedMail_EscapeNoiDung(t *testing.T) {
	lead := leadmodels.Lead{
		Name:    "C",
		Phone:   "0911222333",
		Source:  leadmodels.SourceFurnitureQuote,
		Content: "<script>alert(1)</script>",
	}

	_, body := buildLeadCreatedMail(&lead)

	if strings.Contains(body, "<script>") {
		t.Error("nội dung lead phải được escape trước khi đưa vào HTML")
	}
}

func TestNewEmailNotifier_TatKhiThieuCauHinh(t *testing.T) {
	if n := NewEmailNotifier(nil); n != nil {
		t.Error("config nil phải tắt notifier")
	}
	if n := NewEmailNotifier(&config.Configuration{SMTP_Host: ""}); n != nil {
		t.Error("SMTP_Host trống phải tắt notifier")
	}
	if n := NewEmailNotifier(&config.Configuration{SMTP_Host: "smtp.local", SMTP_To: " , "}); n != nil {
		t.Error("không có địa chỉ nhận hợp lệ phải tắt notifier")
	}
}
