package leadsvc

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	leadmodels "noithat_leads/internal/api/lead/models"
)

// GroupFlags là bộ cờ trùng lặp/liên quan của một lead trong nhóm cùng số điện thoại.
type GroupFlags struct {
	IsPotentialDuplicate  bool
	PotentialDuplicateIDs []primitive.ObjectID
	HasRelatedLeads       bool
	RelatedLeadCount      int
}

// ComputeGroupFlags tính cờ trùng lặp cho lead dựa trên các lead active cùng normalizedPhone.
// peers không được chứa chính lead (lọc theo id). Dùng chung cho ingest, merge và backfill.
func ComputeGroupFlags(lead *leadmodels.Lead, peers []leadmodels.Lead) GroupFlags {
	var flags GroupFlags
	for _, p := range peers {
		if p.ID == lead.ID {
			continue
		}
		if p.Source == lead.Source {
			flags.IsPotentialDuplicate = true
			flags.PotentialDuplicateIDs = append(flags.PotentialDuplicateIDs, p.ID)
		} else {
			flags.RelatedLeadCount++
		}
	}
	flags.HasRelatedLeads = flags.RelatedLeadCount > 0
	return flags
}
