// Package leadsvc - Test logic phân loại submission mới theo nhóm cùng số điện thoại.
package leadsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
)

var classifyNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

const classifyWindow = 60 * time.Minute

// makeLead tạo lead test với createdAt lệch so với classifyNow.
func makeLead(id primitive.ObjectID, source, status string, ago time.Duration) leadmodels.Lead {
	return leadmodels.Lead{
		ID:        id,
		Source:    source,
		Status:    status,
		CreatedAt: classifyNow.Add(-ago).UnixMilli(),
	}
}

func TestClassify_KhongCoPeer(t *testing.T) {
	cls := Classify(leadmodels.SourceQuoteForm, nil, classifyNow, classifyWindow)
	assert.Equal(t, ClassifyIndependent, cls.Kind)
}

func TestClassify_CungNguonTrongCuaSo(t *testing.T) {
	target := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 10*time.Minute)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{target}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, target.ID, cls.TargetID)
}

func TestClassify_DungMepCuaSo(t *testing.T) {
	// createdAt đúng bằng now-window vẫn nằm trong cửa sổ
	target := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, classifyWindow)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{target}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, target.ID, cls.TargetID)
}

func TestClassify_QuaMepCuaSoMotMs(t *testing.T) {
	// Già hơn mép cửa sổ 1ms thì hết gộp tự động, thành DUPLICATE
	peer := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, classifyWindow+time.Millisecond)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{peer}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyDuplicate, cls.Kind)
	assert.Equal(t, []primitive.ObjectID{peer.ID}, cls.DuplicateIDs)
}

func TestClassify_ChonLeadMoiNhatLamDich(t *testing.T) {
	older := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 50*time.Minute)
	newer := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 5*time.Minute)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{older, newer}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, newer.ID, cls.TargetID)
}

func TestClassify_TieBreakChonIdNhoNhat(t *testing.T) {
	idSmall := primitive.ObjectID{0x01}
	idBig := primitive.ObjectID{0x02}
	a := makeLead(idBig, leadmodels.SourceQuoteForm, leadmodels.StatusNew, 10*time.Minute)
	b := makeLead(idSmall, leadmodels.SourceQuoteForm, leadmodels.StatusNew, 10*time.Minute)

	// Kết quả không phụ thuộc thứ tự peers
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{a, b}, classifyNow, classifyWindow)
	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, idSmall, cls.TargetID)

	cls = Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{b, a}, classifyNow, classifyWindow)
	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, idSmall, cls.TargetID)
}

func TestClassify_StatusKhacNewKhongLamDich(t *testing.T) {
	contacted := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusContacted, 10*time.Minute)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{contacted}, classifyNow, classifyWindow)

	// Cùng nguồn nhưng không còn NEW -> tạo lead mới có cờ trùng
	require.Equal(t, ClassifyDuplicate, cls.Kind)
	assert.Equal(t, []primitive.ObjectID{contacted.ID}, cls.DuplicateIDs)
}

func TestClassify_CungNguonNgoaiCuaSo(t *testing.T) {
	old := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 2*time.Hour)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{old}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyDuplicate, cls.Kind)
	assert.Equal(t, []primitive.ObjectID{old.ID}, cls.DuplicateIDs)
}

func TestClassify_CreatedAtTuongLaiKhongLamDich(t *testing.T) {
	// createdAt sau now (clock skew) không được chọn làm đích
	future := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, -5*time.Minute)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{future}, classifyNow, classifyWindow)

	assert.Equal(t, ClassifyDuplicate, cls.Kind)
}

func TestClassify_ChiCoNguonKhac(t *testing.T) {
	other1 := makeLead(primitive.NewObjectID(), leadmodels.SourceContactForm, leadmodels.StatusNew, 10*time.Minute)
	other2 := makeLead(primitive.NewObjectID(), leadmodels.SourceFurnitureQuote, leadmodels.StatusConverted, 3*time.Hour)
	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{other1, other2}, classifyNow, classifyWindow)

	require.Equal(t, ClassifyRelated, cls.Kind)
	assert.Equal(t, 2, cls.RelatedCount)
}

func TestClassify_UuTienMergeHonDuplicate(t *testing.T) {
	// Có cả lead trong cửa sổ lẫn lead cũ cùng nguồn -> vẫn MERGE_INTO
	inWindow := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 30*time.Minute)
	outWindow := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 3*time.Hour)
	otherSource := makeLead(primitive.NewObjectID(), leadmodels.SourceContactForm, leadmodels.StatusNew, 5*time.Minute)

	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{outWindow, otherSource, inWindow}, classifyNow, classifyWindow)
	require.Equal(t, ClassifyMergeInto, cls.Kind)
	assert.Equal(t, inWindow.ID, cls.TargetID)
}

func TestClassify_DuplicateGomTatCaCungNguon(t *testing.T) {
	dup1 := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusContacted, 10*time.Minute)
	dup2 := makeLead(primitive.NewObjectID(), leadmodels.SourceQuoteForm, leadmodels.StatusNew, 5*time.Hour)
	other := makeLead(primitive.NewObjectID(), leadmodels.SourceContactForm, leadmodels.StatusNew, 10*time.Minute)

	cls := Classify(leadmodels.SourceQuoteForm, []leadmodels.Lead{dup1, dup2, other}, classifyNow, classifyWindow)
	require.Equal(t, ClassifyDuplicate, cls.Kind)
	assert.ElementsMatch(t, []primitive.ObjectID{dup1.ID, dup2.ID}, cls.DuplicateIDs)
}
