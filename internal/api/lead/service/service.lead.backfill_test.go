// Package leadsvc - Test tính chất chạy-lại-được của bước tính cờ trong backfill.
package leadsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
)

// applyFlags ghi cờ vừa tính vào lead, mô phỏng persistGroupFlags trên bản trong bộ nhớ.
func applyFlags(lead *leadmodels.Lead, flags GroupFlags) {
	lead.IsPotentialDuplicate = flags.IsPotentialDuplicate
	lead.PotentialDuplicateIDs = flags.PotentialDuplicateIDs
	lead.HasRelatedLeads = flags.HasRelatedLeads
	lead.RelatedLeadCount = flags.RelatedLeadCount
}

func TestBackfillFlags_LanHaiKhongDoi(t *testing.T) {
	phone := "0912345678"
	group := []leadmodels.Lead{
		{ID: primitive.NewObjectID(), NormalizedPhone: &phone, Source: leadmodels.SourceQuoteForm, Status: leadmodels.StatusNew},
		{ID: primitive.NewObjectID(), NormalizedPhone: &phone, Source: leadmodels.SourceQuoteForm, Status: leadmodels.StatusContacted},
		{ID: primitive.NewObjectID(), NormalizedPhone: &phone, Source: leadmodels.SourceContactForm, Status: leadmodels.StatusNew},
	}

	// Lần một: cờ chưa có, mọi lead đều thay đổi
	changedFirst := 0
	for i := range group {
		flags := ComputeGroupFlags(&group[i], group)
		if !flagsEqual(&group[i], flags) {
			applyFlags(&group[i], flags)
			changedFirst++
		}
	}
	assert.Equal(t, len(group), changedFirst, "lần chạy đầu phải cập nhật cả nhóm")

	// Lần hai: cờ đã đúng, không lead nào được ghi lại
	changedSecond := 0
	for i := range group {
		flags := ComputeGroupFlags(&group[i], group)
		if !flagsEqual(&group[i], flags) {
			applyFlags(&group[i], flags)
			changedSecond++
		}
	}
	assert.Zero(t, changedSecond, "chạy lại trên dữ liệu đã gắn cờ không được ghi gì thêm")
}
