package leadsvc

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/common"
)

var mergeNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestAggregateMerge_CongDonSubmissionCount(t *testing.T) {
	primary := leadmodels.Lead{Content: "gốc", SubmissionCount: 2}
	secondaries := []leadmodels.Lead{
		{ID: primitive.NewObjectID(), Content: "a", SubmissionCount: 1},
		{ID: primitive.NewObjectID(), Content: "b", SubmissionCount: 3},
	}

	_, count := aggregateMerge(&primary, secondaries, mergeNow)
	assert.Equal(t, 6, count, "submissionCount phải là tổng của primary và các secondary")
}

func TestAggregateMerge_NoiContentTheoCreatedAt(t *testing.T) {
	idA := primitive.NewObjectID()
	idB := primitive.NewObjectID()
	primary := leadmodels.Lead{Content: "gốc", SubmissionCount: 1}
	// Truyền vào theo thứ tự ngược, createdAt phải quyết định thứ tự nối
	secondaries := []leadmodels.Lead{
		{ID: idB, Content: "mới hơn", SubmissionCount: 1, CreatedAt: 2000},
		{ID: idA, Content: "cũ hơn", SubmissionCount: 1, CreatedAt: 1000},
	}

	content, _ := aggregateMerge(&primary, secondaries, mergeNow)

	expected := "gốc" +
		fmt.Sprintf("\n\n--- gộp từ %s lúc %s ---\ncũ hơn", idA.Hex(), mergeNow.Format(time.RFC3339)) +
		fmt.Sprintf("\n\n--- gộp từ %s lúc %s ---\nmới hơn", idB.Hex(), mergeNow.Format(time.RFC3339))
	assert.Equal(t, expected, content)
}

func TestAggregateMerge_TrungCreatedAtThiTheoId(t *testing.T) {
	idSmall := primitive.ObjectID{0x01}
	idBig := primitive.ObjectID{0x02}
	primary := leadmodels.Lead{Content: "gốc"}
	secondaries := []leadmodels.Lead{
		{ID: idBig, Content: "id lớn", CreatedAt: 1000},
		{ID: idSmall, Content: "id nhỏ", CreatedAt: 1000},
	}

	content, _ := aggregateMerge(&primary, secondaries, mergeNow)

	assert.Less(t,
		strings.Index(content, "id nhỏ"), strings.Index(content, "id lớn"),
		"createdAt bằng nhau thì id nhỏ hơn phải được nối trước")
}

func TestMapLookupErr(t *testing.T) {
	// Không tìm thấy -> lỗi nghiệp vụ 404 của lead
	assert.Equal(t, common.ErrLeadNotFound, mapLookupErr(common.ErrNotFound))

	// Lỗi hạ tầng giữ nguyên, không được biến thành 404
	infraErr := errors.New("connection reset")
	assert.Equal(t, infraErr, mapLookupErr(infraErr))
	assert.NotErrorIs(t, mapLookupErr(infraErr), common.ErrLeadNotFound)
}

func TestAggregateMerge_KhongCoSecondary(t *testing.T) {
	primary := leadmodels.Lead{Content: "gốc", SubmissionCount: 5}
	content, count := aggregateMerge(&primary, nil, mergeNow)
	assert.Equal(t, "gốc", content)
	assert.Equal(t, 5, count)
}
