// Package models - Lead thuộc domain lead (leads).
// Lưu khách hàng tiềm năng từ các form trên website, đã chuẩn hóa số điện thoại
// và phân loại trùng lặp theo cửa sổ thời gian.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các nguồn lead hợp lệ.
const (
	SourceQuoteForm      = "QUOTE_FORM"      // Form báo giá thi công
	SourceContactForm    = "CONTACT_FORM"    // Form liên hệ
	SourceFurnitureQuote = "FURNITURE_QUOTE" // Form báo giá nội thất
)

// Các trạng thái lead. CONVERTED và CANCELLED là trạng thái cuối, không đổi tiếp được.
const (
	StatusNew       = "NEW"
	StatusContacted = "CONTACTED"
	StatusConverted = "CONVERTED"
	StatusCancelled = "CANCELLED"
)

// ValidSources trả về danh sách nguồn hợp lệ.
func ValidSources() []string {
	return []string{SourceQuoteForm, SourceContactForm, SourceFurnitureQuote}
}

// IsValidSource kiểm tra source có hợp lệ không.
func IsValidSource(source string) bool {
	switch source {
	case SourceQuoteForm, SourceContactForm, SourceFurnitureQuote:
		return true
	}
	return false
}

// IsValidStatus kiểm tra status có hợp lệ không.
func IsValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusContacted, StatusConverted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminalStatus kiểm tra status có phải trạng thái cuối không.
func IsTerminalStatus(status string) bool {
	return status == StatusConverted || status == StatusCancelled
}

// StatusChangeEntry ghi lại một lần chuyển trạng thái của lead.
type StatusChangeEntry struct {
	From      string `json:"from" bson:"from"`           // Trạng thái trước
	To        string `json:"to" bson:"to"`               // Trạng thái sau
	Note      string `json:"note,omitempty" bson:"note,omitempty"`
	ChangedAt int64  `json:"changedAt" bson:"changedAt"` // Unix ms
}

// Lead lưu khách hàng tiềm năng (leads).
// Lead "active" là lead chưa bị gộp vào lead khác (MergedIntoID == nil).
type Lead struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	// Thông tin khách gửi lên từ form
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`                           // Số điện thoại gốc khách nhập
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Content string `json:"content,omitempty" bson:"content,omitempty"`   // Nội dung yêu cầu, có thể chứa nội dung gộp từ lead khác
	Source  string `json:"source" bson:"source" index:"single:1"`        // QUOTE_FORM | CONTACT_FORM | FURNITURE_QUOTE

	// Số điện thoại đã chuẩn hóa về dạng "0xxxxxxxxx".
	// nil khi số gốc không parse được. Index compound nằm trong lead_indexes.go.
	NormalizedPhone *string `json:"normalizedPhone,omitempty" bson:"normalizedPhone,omitempty" index:"single:1"`

	// Trạng thái xử lý
	Status        string              `json:"status" bson:"status" index:"single:1"` // NEW | CONTACTED | CONVERTED | CANCELLED
	StatusHistory []StatusChangeEntry `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`

	// Phân loại trùng lặp
	SubmissionCount      int                  `json:"submissionCount" bson:"submissionCount"`           // Số lần submit đã gộp vào lead này (>= 1)
	IsPotentialDuplicate bool                 `json:"isPotentialDuplicate" bson:"isPotentialDuplicate"` // Cùng nguồn, ngoài cửa sổ thời gian
	PotentialDuplicateIDs []primitive.ObjectID `json:"potentialDuplicateIds,omitempty" bson:"potentialDuplicateIds,omitempty"`
	HasRelatedLeads      bool                 `json:"hasRelatedLeads" bson:"hasRelatedLeads"` // Cùng số điện thoại, khác nguồn
	RelatedLeadCount     int                  `json:"relatedLeadCount" bson:"relatedLeadCount"`

	// Tombstone: lead đã bị gộp vào lead khác
	MergedIntoID *primitive.ObjectID `json:"mergedIntoId,omitempty" bson:"mergedIntoId,omitempty"`
	MergedAt     int64               `json:"mergedAt,omitempty" bson:"mergedAt,omitempty"` // Unix ms

	// Timestamps — do basesvc tự động set (Unix ms)
	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty" index:"single:-1"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// IsActive kiểm tra lead còn active (chưa bị gộp) không.
func (l *Lead) IsActive() bool {
	return l.MergedIntoID == nil
}
