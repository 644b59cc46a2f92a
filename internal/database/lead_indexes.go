// Package database - Index bổ sung cho leads (compound) không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"noithat_leads/internal/global"
)

// CreateLeadAdditionalIndexes tạo các index bổ sung cho leads.
// Gọi sau CreateIndexes cho collection leads.
func CreateLeadAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	leads := db.Collection(global.MongoDB_ColNames.Leads)

	// leads: (normalizedPhone, mergedIntoId, createdAt) sparse — truy vấn phân loại theo số điện thoại
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "normalizedPhone", Value: 1},
			{Key: "mergedIntoId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("lead_phone_active_created").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// leads: (source, status, createdAt) — lọc danh sách theo nguồn và trạng thái
	if _, err := leads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "source", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("lead_source_status_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
