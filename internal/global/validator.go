package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("lead_source", validateLeadSource)
	_ = Validate.RegisterValidation("lead_status", validateLeadStatus)
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateLeadSource kiểm tra nguồn lead hợp lệ
func validateLeadSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "QUOTE_FORM", "CONTACT_FORM", "FURNITURE_QUOTE":
		return true
	}
	return false
}

// validateLeadStatus kiểm tra trạng thái lead hợp lệ
func validateLeadStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "NEW", "CONTACTED", "CONVERTED", "CANCELLED":
		return true
	}
	return false
}
