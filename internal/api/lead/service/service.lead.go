// Package leadsvc - Service lead (leads).
// Chuẩn hóa số điện thoại, phân loại trùng lặp, gộp lead và backfill.
package leadsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "noithat_leads/internal/api/base/models"
	basesvc "noithat_leads/internal/api/base/service"
	leaddto "noithat_leads/internal/api/lead/dto"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/common"
	"noithat_leads/internal/database"
	"noithat_leads/internal/global"
)

// LeadService xử lý logic lead: ingest, phân loại, gộp, backfill.
type LeadService struct {
	*basesvc.BaseServiceMongoImpl[leadmodels.Lead]

	txManager database.TransactionManager
	lockColl  *mongo.Collection // Document khóa theo nhóm số điện thoại, xem ingestTx
	window    time.Duration     // Cửa sổ thời gian gộp tự động
	batchSize int               // Kích thước batch khi backfill
	nowFn     func() time.Time  // Inject được để test với clock giả
}

// NewLeadService tạo LeadService mới, đọc cấu hình cửa sổ phân loại từ server config.
func NewLeadService() (*LeadService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Leads)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Leads, common.ErrNotFound)
	}
	lockColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.PhoneLocks)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.PhoneLocks, common.ErrNotFound)
	}

	windowMinutes := 60
	batchSize := 100
	if global.MongoDB_ServerConfig != nil {
		if global.MongoDB_ServerConfig.ClassifyWindowMinutes > 0 {
			windowMinutes = global.MongoDB_ServerConfig.ClassifyWindowMinutes
		}
		if global.MongoDB_ServerConfig.BackfillBatchSize > 0 {
			batchSize = global.MongoDB_ServerConfig.BackfillBatchSize
		}
	}

	return &LeadService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[leadmodels.Lead](coll),
		txManager:            database.NewTransactionManager(global.MongoDB_Session),
		lockColl:             lockColl,
		window:               time.Duration(windowMinutes) * time.Minute,
		batchSize:            batchSize,
		nowFn:                time.Now,
	}, nil
}

// SetNowFunc thay clock của service (dùng trong test).
func (s *LeadService) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// SetTransactionManager thay transaction manager (dùng trong test).
func (s *LeadService) SetTransactionManager(tm database.TransactionManager) {
	if tm != nil {
		s.txManager = tm
	}
}

// findActiveByNormalizedPhone trả về các lead active có normalizedPhone cho trước.
func (s *LeadService) findActiveByNormalizedPhone(ctx context.Context, phone string) ([]leadmodels.Lead, error) {
	filter := bson.M{
		"normalizedPhone": phone,
		"mergedIntoId":    nil,
	}
	return s.Find(ctx, filter, nil)
}

// FindLeads trả về danh sách lead có phân trang, lọc theo source/status/phone nếu có.
// Mặc định chỉ trả về lead active, includeMerged=true để lấy cả tombstone.
func (s *LeadService) FindLeads(ctx context.Context, page, limit int64, source, status, phone string, includeMerged bool) (*basemodels.PaginateResult[leadmodels.Lead], error) {
	filter := bson.M{}
	if !includeMerged {
		filter["mergedIntoId"] = nil
	}
	if source != "" {
		filter["source"] = source
	}
	if status != "" {
		filter["status"] = status
	}
	if phone != "" {
		if normalized, ok := NormalizePhone(phone); ok {
			filter["normalizedPhone"] = normalized
		} else {
			filter["phone"] = phone
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, filter, page, limit, opts)
}

// GetLead trả về một lead theo id.
func (s *LeadService) GetLead(ctx context.Context, id primitive.ObjectID) (leadmodels.Lead, error) {
	return s.FindOneById(ctx, id)
}

// UpdateStatus chuyển trạng thái lead và ghi statusHistory.
// Lead đã gộp hoặc đang ở trạng thái cuối (CONVERTED/CANCELLED) không đổi được nữa.
func (s *LeadService) UpdateStatus(ctx context.Context, id primitive.ObjectID, input *leaddto.LeadStatusUpdateInput) (leadmodels.Lead, error) {
	var zero leadmodels.Lead

	if !leadmodels.IsValidStatus(input.Status) {
		return zero, common.NewError(common.ErrCodeLeadInvalidStatus,
			fmt.Sprintf("Trạng thái %s không hợp lệ", input.Status),
			common.StatusBadRequest, nil)
	}

	lead, err := s.FindOneById(ctx, id)
	if err != nil {
		return zero, err
	}
	if !lead.IsActive() {
		return zero, common.ErrLeadNotFound
	}
	if leadmodels.IsTerminalStatus(lead.Status) {
		return zero, common.NewError(common.ErrCodeLeadInvalidStatus,
			fmt.Sprintf("Lead đã ở trạng thái cuối %s, không thể chuyển sang %s", lead.Status, input.Status),
			common.StatusBadRequest, nil)
	}
	if lead.Status == input.Status {
		return lead, nil
	}

	entry := leadmodels.StatusChangeEntry{
		From:      lead.Status,
		To:        input.Status,
		Note:      input.Note,
		ChangedAt: s.nowFn().UnixMilli(),
	}

	update := &basesvc.UpdateData{
		Set:  map[string]interface{}{"status": input.Status},
		Push: map[string]interface{}{"statusHistory": entry},
	}
	return s.UpdateById(ctx, id, update)
}

// DeleteLead xóa vật lý một lead (chỉ dành cho admin).
// Sau khi xóa, cờ của các lead còn lại trong nhóm số điện thoại được tính lại.
func (s *LeadService) DeleteLead(ctx context.Context, id primitive.ObjectID) error {
	lead, err := s.FindOneById(ctx, id)
	if err != nil {
		return err
	}

	if err := s.DeleteById(ctx, id); err != nil {
		return err
	}

	// Tính lại cờ nhóm cho các lead còn lại
	if lead.NormalizedPhone != nil {
		if err := s.recomputeGroupFlags(ctx, *lead.NormalizedPhone); err != nil {
			return err
		}
	}
	return nil
}

// recomputeGroupFlags tính lại cờ trùng lặp cho tất cả lead active trong một nhóm số điện thoại.
func (s *LeadService) recomputeGroupFlags(ctx context.Context, phone string) error {
	group, err := s.findActiveByNormalizedPhone(ctx, phone)
	if err != nil {
		return err
	}
	for i := range group {
		lead := &group[i]
		flags := ComputeGroupFlags(lead, group)
		if err := s.persistGroupFlags(ctx, lead.ID, flags); err != nil {
			return err
		}
	}
	return nil
}

// persistGroupFlags ghi bộ cờ trùng lặp của một lead xuống database.
func (s *LeadService) persistGroupFlags(ctx context.Context, id primitive.ObjectID, flags GroupFlags) error {
	set := map[string]interface{}{
		"isPotentialDuplicate": flags.IsPotentialDuplicate,
		"hasRelatedLeads":      flags.HasRelatedLeads,
		"relatedLeadCount":     flags.RelatedLeadCount,
	}
	update := &basesvc.UpdateData{Set: set}
	if len(flags.PotentialDuplicateIDs) > 0 {
		set["potentialDuplicateIds"] = flags.PotentialDuplicateIDs
	} else {
		update.Unset = map[string]interface{}{"potentialDuplicateIds": ""}
	}

	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}
