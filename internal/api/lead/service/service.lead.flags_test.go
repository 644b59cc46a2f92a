// Package leadsvc - Test tính cờ trùng lặp/liên quan theo nhóm cùng số điện thoại.
package leadsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
)

func TestComputeGroupFlags_NhomRong(t *testing.T) {
	lead := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	flags := ComputeGroupFlags(&lead, nil)

	assert.False(t, flags.IsPotentialDuplicate)
	assert.Empty(t, flags.PotentialDuplicateIDs)
	assert.False(t, flags.HasRelatedLeads)
	assert.Zero(t, flags.RelatedLeadCount)
}

func TestComputeGroupFlags_CungNguon(t *testing.T) {
	lead := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	peer := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	flags := ComputeGroupFlags(&lead, []leadmodels.Lead{peer})

	assert.True(t, flags.IsPotentialDuplicate)
	assert.Equal(t, []primitive.ObjectID{peer.ID}, flags.PotentialDuplicateIDs)
	assert.False(t, flags.HasRelatedLeads)
}

// Cờ trùng lặp phải đối xứng: A thấy B thì B cũng thấy A.
func TestComputeGroupFlags_DoiXung(t *testing.T) {
	a := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	b := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	group := []leadmodels.Lead{a, b}

	flagsA := ComputeGroupFlags(&a, group)
	flagsB := ComputeGroupFlags(&b, group)

	assert.True(t, flagsA.IsPotentialDuplicate)
	assert.True(t, flagsB.IsPotentialDuplicate)
	assert.Equal(t, []primitive.ObjectID{b.ID}, flagsA.PotentialDuplicateIDs)
	assert.Equal(t, []primitive.ObjectID{a.ID}, flagsB.PotentialDuplicateIDs)
}

func TestComputeGroupFlags_KhacNguon(t *testing.T) {
	lead := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	other1 := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceContactForm}
	other2 := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceFurnitureQuote}
	flags := ComputeGroupFlags(&lead, []leadmodels.Lead{other1, other2})

	assert.False(t, flags.IsPotentialDuplicate)
	assert.True(t, flags.HasRelatedLeads)
	assert.Equal(t, 2, flags.RelatedLeadCount)
}

func TestComputeGroupFlags_HonHop(t *testing.T) {
	lead := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	same := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	other := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceContactForm}
	flags := ComputeGroupFlags(&lead, []leadmodels.Lead{same, other})

	assert.True(t, flags.IsPotentialDuplicate)
	assert.Equal(t, []primitive.ObjectID{same.ID}, flags.PotentialDuplicateIDs)
	assert.True(t, flags.HasRelatedLeads)
	assert.Equal(t, 1, flags.RelatedLeadCount)
}

// peers có thể chứa chính lead (khi tính lại cho cả nhóm), phải tự loại mình ra.
func TestComputeGroupFlags_BoQuaChinhMinh(t *testing.T) {
	lead := leadmodels.Lead{ID: primitive.NewObjectID(), Source: leadmodels.SourceQuoteForm}
	flags := ComputeGroupFlags(&lead, []leadmodels.Lead{lead})

	assert.False(t, flags.IsPotentialDuplicate)
	assert.False(t, flags.HasRelatedLeads)
}

func TestFlagsEqual(t *testing.T) {
	id1 := primitive.NewObjectID()
	id2 := primitive.NewObjectID()

	lead := leadmodels.Lead{
		IsPotentialDuplicate:  true,
		PotentialDuplicateIDs: []primitive.ObjectID{id1, id2},
		HasRelatedLeads:       false,
	}

	assert.True(t, flagsEqual(&lead, GroupFlags{
		IsPotentialDuplicate:  true,
		PotentialDuplicateIDs: []primitive.ObjectID{id2, id1}, // thứ tự khác vẫn tính là bằng
	}))

	assert.False(t, flagsEqual(&lead, GroupFlags{
		IsPotentialDuplicate:  true,
		PotentialDuplicateIDs: []primitive.ObjectID{id1},
	}))

	assert.False(t, flagsEqual(&lead, GroupFlags{
		IsPotentialDuplicate:  true,
		PotentialDuplicateIDs: []primitive.ObjectID{id1, id2},
		HasRelatedLeads:       true,
		RelatedLeadCount:      1,
	}))
}
