package leadsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "noithat_leads/internal/api/base/service"
	leaddto "noithat_leads/internal/api/lead/dto"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/common"
	"noithat_leads/internal/logger"
)

// IngestResult là kết quả xử lý một submission mới.
type IngestResult struct {
	Lead           leadmodels.Lead `json:"lead"`           // Lead mới tạo, hoặc lead đích khi submission bị gộp
	Classification string          `json:"classification"` // MERGE_INTO | DUPLICATE | RELATED | INDEPENDENT
}

// CreateLead xử lý một submission mới từ form.
// Toàn bộ đọc peer + quyết định + ghi chạy trong một transaction. Snapshot isolation
// của MongoDB không tự chặn được hai submission đồng thời cùng số điện thoại cùng
// quyết định "không có peer" (hai insert khác document không xung đột), nên ingestTx
// ghi thêm vào document khóa của nhóm số để ép hai transaction xung đột với nhau;
// transaction thua được WithTransaction chạy lại và thấy lead mà transaction thắng đã ghi.
//
// Submission bị gộp tự động (cùng nguồn, NEW, trong cửa sổ) được hấp thụ thẳng vào lead đích,
// không tạo dòng mới và không phát event tạo lead.
func (s *LeadService) CreateLead(ctx context.Context, input *leaddto.LeadCreateInput) (*IngestResult, error) {
	if !leadmodels.IsValidSource(input.Source) {
		return nil, common.NewError(common.ErrCodeValidationInput,
			fmt.Sprintf("Nguồn %s không hợp lệ", input.Source), common.StatusBadRequest, nil)
	}

	normalized, parseable := NormalizePhone(input.Phone)

	var result *IngestResult
	err := s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		ingested, err := s.ingestTx(sessCtx, input, normalized, parseable)
		if err != nil {
			return err
		}
		result = ingested
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.GetAppLogger().WithFields(map[string]interface{}{
		"leadId":         result.Lead.ID.Hex(),
		"source":         input.Source,
		"classification": result.Classification,
	}).Info("[LEAD] Đã xử lý submission")

	return result, nil
}

// ingestTx là phần thân của CreateLead, chạy bên trong transaction.
func (s *LeadService) ingestTx(ctx mongo.SessionContext, input *leaddto.LeadCreateInput, normalized string, parseable bool) (*IngestResult, error) {
	draft := leadmodels.Lead{
		Name:            input.Name,
		Phone:           input.Phone,
		Email:           input.Email,
		Content:         input.Content,
		Source:          input.Source,
		Status:          leadmodels.StatusNew,
		SubmissionCount: 1,
	}

	// Số không parse được: lưu với normalizedPhone null, không tham gia nhóm trùng lặp
	if !parseable {
		created, err := s.InsertOne(ctx, draft)
		if err != nil {
			return nil, err
		}
		return &IngestResult{Lead: created, Classification: ClassifyIndependent}, nil
	}

	draft.NormalizedPhone = &normalized

	// Chạm vào document khóa của nhóm số trước khi đọc peer, xem comment ở CreateLead
	lockFilter, lockUpdate := phoneLockTouch(normalized, s.nowFn())
	if _, err := s.lockColl.UpdateOne(ctx, lockFilter, lockUpdate, options.Update().SetUpsert(true)); err != nil {
		return nil, common.ConvertMongoError(err)
	}

	peers, err := s.findActiveByNormalizedPhone(ctx, normalized)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	cls := Classify(input.Source, peers, now, s.window)

	// Gộp tự động: hấp thụ submission vào lead đích
	if cls.Kind == ClassifyMergeInto {
		absorbed, err := s.absorbSubmission(ctx, cls, input, now)
		if err != nil {
			return nil, err
		}
		return &IngestResult{Lead: absorbed, Classification: ClassifyMergeInto}, nil
	}

	// Các trường hợp còn lại: tạo lead mới với cờ nhóm tính sẵn
	flags := ComputeGroupFlags(&draft, peers)
	draft.IsPotentialDuplicate = flags.IsPotentialDuplicate
	draft.PotentialDuplicateIDs = flags.PotentialDuplicateIDs
	draft.HasRelatedLeads = flags.HasRelatedLeads
	draft.RelatedLeadCount = flags.RelatedLeadCount

	created, err := s.InsertOne(ctx, draft)
	if err != nil {
		return nil, err
	}

	// Cập nhật cờ chiều ngược lại cho các peer (cờ trùng lặp là quan hệ hai chiều)
	if len(peers) > 0 {
		if err := s.recomputeGroupFlags(ctx, normalized); err != nil {
			return nil, err
		}
		created, err = s.FindOneById(ctx, created.ID)
		if err != nil {
			return nil, err
		}
	}

	return &IngestResult{Lead: created, Classification: cls.Kind}, nil
}

// phoneLockTouch tạo filter và update cho document khóa của một nhóm số điện thoại.
// Khóa dùng chính số đã chuẩn hóa làm _id, mỗi lần ingest $set lại touchedAt.
func phoneLockTouch(phone string, now time.Time) (bson.M, bson.M) {
	return bson.M{"_id": phone}, bson.M{"$set": bson.M{"touchedAt": now.UnixMilli()}}
}

// absorbSubmission hấp thụ một submission vào lead đích: nối nội dung kèm marker
// và tăng submissionCount. Không tạo dòng mới.
func (s *LeadService) absorbSubmission(ctx mongo.SessionContext, cls Classification, input *leaddto.LeadCreateInput, now time.Time) (leadmodels.Lead, error) {
	var zero leadmodels.Lead

	target, err := s.FindOne(ctx, bson.M{"_id": cls.TargetID, "mergedIntoId": nil}, nil)
	if err != nil {
		return zero, mapLookupErr(err)
	}

	content := target.Content
	if input.Content != "" {
		content += fmt.Sprintf("\n\n--- gộp từ lần gửi lúc %s ---\n%s",
			now.Format(time.RFC3339), input.Content)
	}

	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"content":         content,
			"submissionCount": target.SubmissionCount + 1,
		},
	}
	return s.UpdateOne(ctx, bson.M{"_id": target.ID}, update, nil)
}
