package leadsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "noithat_leads/internal/api/base/service"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/logger"
)

// maxBackfillWarnings giới hạn số warning ghi vào report.
const maxBackfillWarnings = 50

// BackfillReport là báo cáo kết quả của một lần chạy backfill.
type BackfillReport struct {
	// Phase 1
	NormalizedCount      int      `json:"normalizedCount"`      // Số lead chuẩn hóa thành công
	NormalizeFailedCount int      `json:"normalizeFailedCount"` // Số lead không chuẩn hóa được
	Warnings             []string `json:"warnings,omitempty"`   // Tối đa 50 warning

	// Phase 2
	FlagsUpdatedCount int `json:"flagsUpdatedCount"` // Số lead có cờ thay đổi

	// Verification
	TotalActive         int64 `json:"totalActive"`
	WithNormalizedPhone int64 `json:"withNormalizedPhone"`
	FlaggedDuplicate    int64 `json:"flaggedDuplicate"`
	FlaggedRelated      int64 `json:"flaggedRelated"`
	PhonesMultiSource   int64 `json:"phonesMultiSource"` // Số điện thoại xuất hiện ở nhiều hơn 1 nguồn
}

// Backfill chạy job sửa dữ liệu hai pha, idempotent, chạy lại được:
//
// Phase 1: chuẩn hóa số điện thoại cho các lead active chưa có normalizedPhone,
// theo batch, mỗi batch một transaction. Số không chuẩn hóa được bị set normalizedPhone=null
// tường minh để query "cần chuẩn hóa" co về rỗng ở lần chạy sau.
//
// Phase 2: load toàn bộ lead active có normalizedPhone, nhóm theo số trong bộ nhớ,
// tính lại cờ trùng lặp/liên quan và chỉ ghi những lead có cờ thay đổi.
//
// Lỗi kết nối giữa chừng dừng các batch còn lại, các batch đã commit giữ nguyên.
func (s *LeadService) Backfill(ctx context.Context) (*BackfillReport, error) {
	report := &BackfillReport{}

	if err := s.backfillNormalize(ctx, report); err != nil {
		return report, err
	}
	if err := s.backfillClassify(ctx, report); err != nil {
		return report, err
	}
	if err := s.backfillVerify(ctx, report); err != nil {
		return report, err
	}

	logger.GetAppLogger().WithFields(map[string]interface{}{
		"normalized":       report.NormalizedCount,
		"normalizeFailed":  report.NormalizeFailedCount,
		"flagsUpdated":     report.FlagsUpdatedCount,
		"totalActive":      report.TotalActive,
		"multiSourcePhone": report.PhonesMultiSource,
	}).Info("[LEAD] Backfill hoàn tất")

	return report, nil
}

// needsNormalizationFilter chọn các lead active chưa từng được chuẩn hóa.
// normalizedPhone=null tường minh (đã chuẩn hóa thất bại) không match nữa.
func needsNormalizationFilter() bson.M {
	return bson.M{
		"mergedIntoId": nil,
		"$or": []bson.M{
			{"normalizedPhone": bson.M{"$exists": false}},
			{"normalizedPhone": ""},
		},
	}
}

// backfillNormalize là Phase 1: chuẩn hóa theo batch, mỗi batch một transaction.
func (s *LeadService) backfillNormalize(ctx context.Context, report *BackfillReport) error {
	for {
		batch, err := s.Find(ctx, needsNormalizationFilter(), options.Find().SetLimit(int64(s.batchSize)))
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		// Đếm trong biến cục bộ vì transaction có thể được driver chạy lại
		var okCount, failCount int
		var warnings []string

		err = s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			okCount, failCount = 0, 0
			warnings = warnings[:0]

			for i := range batch {
				lead := &batch[i]
				normalized, ok := NormalizePhone(lead.Phone)

				var update *basesvc.UpdateData
				if ok {
					update = &basesvc.UpdateData{
						Set: map[string]interface{}{"normalizedPhone": normalized},
					}
					okCount++
				} else {
					// Set null tường minh để lần chạy sau không chọn lại lead này
					update = &basesvc.UpdateData{
						Set: map[string]interface{}{"normalizedPhone": nil},
					}
					failCount++
					warnings = append(warnings,
						fmt.Sprintf("lead %s: không chuẩn hóa được số điện thoại %q", lead.ID.Hex(), lead.Phone))
				}

				if _, err := s.UpdateOne(sessCtx, bson.M{"_id": lead.ID}, update, nil); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		report.NormalizedCount += okCount
		report.NormalizeFailedCount += failCount
		for _, w := range warnings {
			if len(report.Warnings) >= maxBackfillWarnings {
				break
			}
			report.Warnings = append(report.Warnings, w)
		}
	}
}

// backfillClassify là Phase 2: nhóm theo normalizedPhone trong bộ nhớ và tính lại cờ.
// Mỗi lead ghi riêng lẻ, nhóm không cần chung transaction vì đây là job sửa dữ liệu offline.
func (s *LeadService) backfillClassify(ctx context.Context, report *BackfillReport) error {
	filter := bson.M{
		"mergedIntoId":    nil,
		"normalizedPhone": bson.M{"$type": "string", "$ne": ""},
	}
	leads, err := s.Find(ctx, filter, nil)
	if err != nil {
		return err
	}

	groups := make(map[string][]leadmodels.Lead)
	for _, l := range leads {
		if l.NormalizedPhone == nil {
			continue
		}
		groups[*l.NormalizedPhone] = append(groups[*l.NormalizedPhone], l)
	}

	for _, group := range groups {
		// Nhóm một thành viên: không có gì để gắn cờ
		if len(group) < 2 {
			continue
		}
		for i := range group {
			lead := &group[i]
			flags := ComputeGroupFlags(lead, group)
			if flagsEqual(lead, flags) {
				continue
			}
			if err := s.persistGroupFlags(ctx, lead.ID, flags); err != nil {
				return err
			}
			report.FlagsUpdatedCount++
		}
	}
	return nil
}

// flagsEqual kiểm tra cờ đã lưu của lead có trùng với cờ vừa tính không.
func flagsEqual(lead *leadmodels.Lead, flags GroupFlags) bool {
	if lead.IsPotentialDuplicate != flags.IsPotentialDuplicate ||
		lead.HasRelatedLeads != flags.HasRelatedLeads ||
		lead.RelatedLeadCount != flags.RelatedLeadCount {
		return false
	}
	if len(lead.PotentialDuplicateIDs) != len(flags.PotentialDuplicateIDs) {
		return false
	}
	stored := make(map[string]bool, len(lead.PotentialDuplicateIDs))
	for _, id := range lead.PotentialDuplicateIDs {
		stored[id.Hex()] = true
	}
	for _, id := range flags.PotentialDuplicateIDs {
		if !stored[id.Hex()] {
			return false
		}
	}
	return true
}

// backfillVerify tính các số liệu kiểm chứng cuối cùng. Chạy được trên dataset rỗng.
func (s *LeadService) backfillVerify(ctx context.Context, report *BackfillReport) error {
	var err error
	if report.TotalActive, err = s.CountDocuments(ctx, bson.M{"mergedIntoId": nil}); err != nil {
		return err
	}
	if report.WithNormalizedPhone, err = s.CountDocuments(ctx, bson.M{
		"mergedIntoId":    nil,
		"normalizedPhone": bson.M{"$type": "string", "$ne": ""},
	}); err != nil {
		return err
	}
	if report.FlaggedDuplicate, err = s.CountDocuments(ctx, bson.M{
		"mergedIntoId":         nil,
		"isPotentialDuplicate": true,
	}); err != nil {
		return err
	}
	if report.FlaggedRelated, err = s.CountDocuments(ctx, bson.M{
		"mergedIntoId":    nil,
		"hasRelatedLeads": true,
	}); err != nil {
		return err
	}

	// Đếm số điện thoại xuất hiện ở nhiều hơn 1 nguồn
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"mergedIntoId":    nil,
			"normalizedPhone": bson.M{"$type": "string", "$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$normalizedPhone",
			"sources": bson.M{"$addToSet": "$source"},
		}}},
		{{Key: "$match", Value: bson.M{"sources.1": bson.M{"$exists": true}}}},
		{{Key: "$count", Value: "count"}},
	}
	cursor, err := s.Collection().Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var counts []struct {
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &counts); err != nil {
		return err
	}
	if len(counts) > 0 {
		report.PhonesMultiSource = counts[0].Count
	}
	return nil
}
