package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsValidSource(t *testing.T) {
	for _, s := range []string{SourceQuoteForm, SourceContactForm, SourceFurnitureQuote} {
		if !IsValidSource(s) {
			t.Errorf("IsValidSource(%q) = false, muốn true", s)
		}
	}
	for _, s := range []string{"", "WEB_FORM", "quote_form"} {
		if IsValidSource(s) {
			t.Errorf("IsValidSource(%q) = true, muốn false", s)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusNew, StatusContacted, StatusConverted, StatusCancelled} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false, muốn true", s)
		}
	}
	for _, s := range []string{"", "new", "DONE"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true, muốn false", s)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if IsTerminalStatus(StatusNew) || IsTerminalStatus(StatusContacted) {
		t.Error("NEW và CONTACTED không phải trạng thái kết thúc")
	}
	if !IsTerminalStatus(StatusConverted) || !IsTerminalStatus(StatusCancelled) {
		t.Error("CONVERTED và CANCELLED là trạng thái kết thúc")
	}
}

func TestLeadIsActive(t *testing.T) {
	lead := Lead{}
	if !lead.IsActive() {
		t.Error("lead chưa bị gộp phải active")
	}

	target := primitive.NewObjectID()
	lead.MergedIntoID = &target
	if lead.IsActive() {
		t.Error("lead đã bị gộp không được tính là active")
	}
}
