// Package notification gửi email báo cho sales khi có lead mới.
// Đăng ký qua events.OnDataChanged, chạy ngoài transaction nên lỗi SMTP
// không ảnh hưởng đến việc ghi lead.
package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"noithat_leads/config"
	"noithat_leads/internal/api/events"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/global"
	"noithat_leads/internal/logger"
)

// EmailNotifier gửi email thông báo lead mới qua SMTP.
type EmailNotifier struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	recipients []string
}

// NewEmailNotifier tạo notifier từ config. Trả về nil nếu SMTP_Host trống (tắt gửi email).
func NewEmailNotifier(c *config.Configuration) *EmailNotifier {
	if c == nil || c.SMTP_Host == "" {
		return nil
	}

	var recipients []string
	for _, addr := range strings.Split(c.SMTP_To, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	return &EmailNotifier{
		host:       c.SMTP_Host,
		port:       c.SMTP_Port,
		username:   c.SMTP_Username,
		password:   c.SMTP_Password,
		from:       c.SMTP_From,
		recipients: recipients,
	}
}

// RegisterLeadCreatedNotifier đăng ký gửi email khi lead mới được tạo.
// Gọi một lần khi khởi động. Không đăng ký gì nếu SMTP chưa cấu hình.
func RegisterLeadCreatedNotifier(c *config.Configuration) {
	notifier := NewEmailNotifier(c)
	if notifier == nil {
		logger.GetAppLogger().Info("[NOTIFY] SMTP chưa cấu hình, tắt gửi email lead mới")
		return
	}

	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.Leads || e.Operation != events.OpInsert {
			return
		}
		lead, ok := e.Document.(leadmodels.Lead)
		if !ok {
			return
		}
		if err := notifier.SendLeadCreated(&lead); err != nil {
			logger.GetErrorLogger().WithError(err).
				WithField("leadId", lead.ID.Hex()).
				Error("[NOTIFY] Gửi email lead mới thất bại")
		}
	})
	logger.GetAppLogger().Infof("[NOTIFY] Đã bật gửi email lead mới tới %d địa chỉ", len(notifier.recipients))
}

// SendLeadCreated gửi email thông báo một lead vừa được tạo.
func (n *EmailNotifier) SendLeadCreated(lead *leadmodels.Lead) error {
	subject, body := buildLeadCreatedMail(lead)

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(n.host, n.port, n.username, n.password)
	return dialer.DialAndSend(msg)
}

// buildLeadCreatedMail dựng subject và phần thân HTML của email lead mới.
func buildLeadCreatedMail(lead *leadmodels.Lead) (subject, body string) {
	subject = fmt.Sprintf("[Lead mới] %s - %s", lead.Name, sourceLabel(lead.Source))

	var b strings.Builder
	b.WriteString("<h3>Lead mới từ website</h3>")
	b.WriteString("<table cellpadding='4' style='border-collapse:collapse;'>")
	writeRow(&b, "Họ tên", lead.Name)
	writeRow(&b, "Điện thoại", lead.Phone)
	if lead.Email != "" {
		writeRow(&b, "Email", lead.Email)
	}
	writeRow(&b, "Nguồn", sourceLabel(lead.Source))
	writeRow(&b, "Thời gian", time.UnixMilli(lead.CreatedAt).Format("15:04 02/01/2006"))
	if lead.IsPotentialDuplicate {
		writeRow(&b, "Cảnh báo", fmt.Sprintf("Trùng SĐT với %d lead cùng nguồn", len(lead.PotentialDuplicateIDs)))
	} else if lead.HasRelatedLeads {
		writeRow(&b, "Ghi chú", fmt.Sprintf("Cùng SĐT với %d lead ở nguồn khác", lead.RelatedLeadCount))
	}
	b.WriteString("</table>")
	if lead.Content != "" {
		b.WriteString("<p><b>Nội dung:</b><br>" + strings.ReplaceAll(html.EscapeString(lead.Content), "\n", "<br>") + "</p>")
	}
	return subject, b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString("<tr><td style='border:1px solid #ddd;'><b>" + html.EscapeString(label) +
		"</b></td><td style='border:1px solid #ddd;'>" + html.EscapeString(value) + "</td></tr>")
}

// sourceLabel trả về tên hiển thị tiếng Việt của nguồn lead.
func sourceLabel(source string) string {
	switch source {
	case leadmodels.SourceQuoteForm:
		return "Form báo giá"
	case leadmodels.SourceContactForm:
		return "Form liên hệ"
	case leadmodels.SourceFurnitureQuote:
		return "Form báo giá nội thất"
	default:
		return source
	}
}
