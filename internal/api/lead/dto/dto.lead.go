// Package leaddto chứa các kiểu đầu vào/đầu ra của API lead.
package leaddto

// LeadCreateInput đầu vào khi khách submit form.
type LeadCreateInput struct {
	Name    string `json:"name" validate:"required,no_xss"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Content string `json:"content,omitempty" validate:"omitempty,no_xss"`
	Source  string `json:"source" validate:"required,lead_source"`
}

// LeadStatusUpdateInput đầu vào khi cập nhật trạng thái lead.
type LeadStatusUpdateInput struct {
	Status string `json:"status" validate:"required,lead_status"`
	Note   string `json:"note,omitempty" validate:"omitempty,no_xss"`
}

// LeadMergeInput đầu vào khi gộp lead thủ công.
type LeadMergeInput struct {
	PrimaryID    string   `json:"primaryId" validate:"required"`
	SecondaryIDs []string `json:"secondaryIds" validate:"required,min=1"`
}
