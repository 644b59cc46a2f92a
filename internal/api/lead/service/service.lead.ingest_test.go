package leadsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPhoneLockTouch(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	filter, update := phoneLockTouch("0912345678", now)

	// Khóa của cả nhóm dùng chính số đã chuẩn hóa làm _id: hai submission đồng thời
	// cùng số sẽ ghi vào cùng một document và xung đột với nhau
	assert.Equal(t, bson.M{"_id": "0912345678"}, filter)
	assert.Equal(t, bson.M{"$set": bson.M{"touchedAt": now.UnixMilli()}}, update)
}
