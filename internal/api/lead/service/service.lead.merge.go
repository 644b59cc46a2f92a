package leadsvc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "noithat_leads/internal/api/base/service"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/common"
	"noithat_leads/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MergeResult là kết quả của một lần gộp lead.
type MergeResult struct {
	Primary     leadmodels.Lead `json:"primary"`
	MergedCount int             `json:"mergedCount"`
}

// MergeLeads gộp các lead secondary vào lead primary trong một transaction.
// Điều kiện (kiểm tra trước khi ghi bất kỳ thay đổi nào):
//   - primary và mọi secondary phải tồn tại và còn active (chưa bị gộp)
//   - mọi secondary phải cùng source với primary
//   - primary không được nằm trong danh sách secondary
//
// Nội dung secondary được nối vào primary kèm marker nguồn gốc, submissionCount được cộng dồn,
// secondary trở thành tombstone (mergedIntoId trỏ về primary). Cờ trùng lặp của nhóm được tính lại.
func (s *LeadService) MergeLeads(ctx context.Context, primaryID primitive.ObjectID, secondaryIDs []primitive.ObjectID) (*MergeResult, error) {
	if len(secondaryIDs) == 0 {
		return nil, common.NewError(common.ErrCodeValidationInput,
			"Danh sách lead cần gộp không được rỗng", common.StatusBadRequest, nil)
	}
	for _, id := range secondaryIDs {
		if id == primaryID {
			return nil, common.ErrLeadSelfMerge
		}
	}

	var result *MergeResult
	err := s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		merged, err := s.mergeLeadsTx(sessCtx, primaryID, secondaryIDs)
		if err != nil {
			return err
		}
		result = merged
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetAuditLogger().WithFields(map[string]interface{}{
		"action":      "lead_merge",
		"primaryId":   primaryID.Hex(),
		"mergedCount": result.MergedCount,
	}).Info("Đã gộp lead")

	return result, nil
}

// mergeLeadsTx là phần thân của MergeLeads, chạy bên trong transaction.
// Gộp tự động khi ingest không đi qua đây mà hấp thụ thẳng submission (xem absorbSubmission).
func (s *LeadService) mergeLeadsTx(ctx mongo.SessionContext, primaryID primitive.ObjectID, secondaryIDs []primitive.ObjectID) (*MergeResult, error) {
	// Kiểm tra primary tồn tại và còn active
	primary, err := s.FindOne(ctx, bson.M{"_id": primaryID, "mergedIntoId": nil}, nil)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	// Kiểm tra từng secondary: tồn tại, active, cùng nguồn
	secondaries := make([]leadmodels.Lead, 0, len(secondaryIDs))
	for _, id := range secondaryIDs {
		sec, err := s.FindOne(ctx, bson.M{"_id": id, "mergedIntoId": nil}, nil)
		if err != nil {
			return nil, mapLookupErr(err)
		}
		if sec.Source != primary.Source {
			return nil, common.ErrLeadSourceMismatch
		}
		secondaries = append(secondaries, sec)
	}

	now := s.nowFn()
	nowMs := now.UnixMilli()
	content, submissionCount := aggregateMerge(&primary, secondaries, now)

	for _, sec := range secondaries {
		// Tombstone secondary. Ghi trực tiếp với guard "còn active" để merge đồng thời
		// trên cùng secondary thất bại thay vì gộp hai lần.
		res, err := s.Collection().UpdateOne(ctx,
			bson.M{"_id": sec.ID, "mergedIntoId": nil},
			bson.M{"$set": bson.M{
				"mergedIntoId": primary.ID,
				"mergedAt":     nowMs,
				"updatedAt":    nowMs,
			}})
		if err != nil {
			return nil, common.ConvertMongoError(err)
		}
		if res.MatchedCount == 0 {
			return nil, common.ErrLeadNotFound
		}
	}

	// Cập nhật primary
	primaryUpdate := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"content":         content,
			"submissionCount": submissionCount,
		},
	}
	updated, err := s.UpdateOne(ctx, bson.M{"_id": primary.ID}, primaryUpdate, nil)
	if err != nil {
		return nil, err
	}

	// Tính lại cờ nhóm với các lead còn active (secondary vừa tombstone đã bị loại)
	if updated.NormalizedPhone != nil {
		if err := s.recomputeGroupFlags(ctx, *updated.NormalizedPhone); err != nil {
			return nil, err
		}
		updated, err = s.FindOneById(ctx, updated.ID)
		if err != nil {
			return nil, err
		}
	}

	return &MergeResult{Primary: updated, MergedCount: len(secondaries)}, nil
}

// mapLookupErr map lỗi không-tìm-thấy khi tra cứu lead active sang ErrLeadNotFound.
// Lỗi hạ tầng (mạng, timeout) giữ nguyên để trả về 5xx thay vì 404.
func mapLookupErr(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrLeadNotFound
	}
	return err
}

// aggregateMerge tính nội dung và submissionCount của primary sau khi gộp.
// Secondary được sắp theo createdAt tăng dần (trùng thì theo id) ngay trên slice truyền vào,
// mỗi secondary được nối vào content kèm marker nguồn gốc.
func aggregateMerge(primary *leadmodels.Lead, secondaries []leadmodels.Lead, now time.Time) (content string, submissionCount int) {
	sort.Slice(secondaries, func(i, j int) bool {
		if secondaries[i].CreatedAt != secondaries[j].CreatedAt {
			return secondaries[i].CreatedAt < secondaries[j].CreatedAt
		}
		return lessObjectID(secondaries[i].ID, secondaries[j].ID)
	})

	content = primary.Content
	submissionCount = primary.SubmissionCount
	for _, sec := range secondaries {
		content += fmt.Sprintf("\n\n--- gộp từ %s lúc %s ---\n%s",
			sec.ID.Hex(), now.Format(time.RFC3339), sec.Content)
		submissionCount += sec.SubmissionCount
	}
	return content, submissionCount
}
