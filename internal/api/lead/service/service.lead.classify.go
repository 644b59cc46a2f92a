package leadsvc

import (
	"bytes"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
)

// Các kết quả phân loại một submission mới.
const (
	ClassifyMergeInto   = "MERGE_INTO"   // Gộp thẳng vào lead đích (cùng nguồn, NEW, trong cửa sổ)
	ClassifyDuplicate   = "DUPLICATE"    // Cùng nguồn nhưng ngoài cửa sổ, tạo lead mới có cờ trùng lặp
	ClassifyRelated     = "RELATED"      // Chỉ có lead khác nguồn cùng số điện thoại
	ClassifyIndependent = "INDEPENDENT"  // Không có lead nào cùng số điện thoại
)

// Classification là quyết định phân loại cho một submission mới.
type Classification struct {
	Kind         string
	TargetID     primitive.ObjectID   // Lead đích khi Kind == MERGE_INTO
	DuplicateIDs []primitive.ObjectID // Các lead cùng nguồn khi Kind == DUPLICATE
	RelatedCount int                  // Số lead cùng số điện thoại khi Kind == RELATED
}

// Classify quyết định xử lý một submission mới dựa trên các lead active cùng số điện thoại.
// peers là danh sách lead active có normalizedPhone trùng với submission (không chứa submission).
// Hàm thuần, không đọc ghi database.
//
// Thứ tự quyết định:
//  1. Trong các lead cùng nguồn, status NEW, createdAt trong [now-window, now]:
//     chọn lead có createdAt lớn nhất (tie-break: id nhỏ nhất) -> MERGE_INTO
//  2. Còn lead cùng nguồn (bất kể thời gian) -> DUPLICATE
//  3. Chỉ còn lead khác nguồn -> RELATED
//  4. Không có lead nào -> INDEPENDENT
func Classify(source string, peers []leadmodels.Lead, now time.Time, window time.Duration) Classification {
	if len(peers) == 0 {
		return Classification{Kind: ClassifyIndependent}
	}

	windowStart := now.Add(-window).UnixMilli()
	nowMs := now.UnixMilli()

	var sameSource []leadmodels.Lead
	for _, p := range peers {
		if p.Source == source {
			sameSource = append(sameSource, p)
		}
	}

	// Bước 1: tìm lead đích để gộp trong cửa sổ thời gian
	var target *leadmodels.Lead
	for i := range sameSource {
		p := &sameSource[i]
		if p.Status != leadmodels.StatusNew {
			continue
		}
		if p.CreatedAt < windowStart || p.CreatedAt > nowMs {
			continue
		}
		if target == nil {
			target = p
			continue
		}
		if p.CreatedAt > target.CreatedAt {
			target = p
		} else if p.CreatedAt == target.CreatedAt && lessObjectID(p.ID, target.ID) {
			target = p
		}
	}
	if target != nil {
		return Classification{Kind: ClassifyMergeInto, TargetID: target.ID}
	}

	// Bước 2: cùng nguồn nhưng ngoài cửa sổ
	if len(sameSource) > 0 {
		ids := make([]primitive.ObjectID, 0, len(sameSource))
		for _, p := range sameSource {
			ids = append(ids, p.ID)
		}
		return Classification{Kind: ClassifyDuplicate, DuplicateIDs: ids}
	}

	// Bước 3: chỉ có lead khác nguồn
	return Classification{Kind: ClassifyRelated, RelatedCount: len(peers)}
}

// lessObjectID so sánh hai ObjectID theo thứ tự byte.
func lessObjectID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
