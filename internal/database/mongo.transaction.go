package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"noithat_leads/internal/api/events"
	"noithat_leads/internal/common"
)

// TransactionFunc là hàm nghiệp vụ chạy bên trong một transaction MongoDB.
type TransactionFunc func(ctx mongo.SessionContext) error

// TransactionManager bao bọc việc chạy transaction trên MongoDB.
// Yêu cầu MongoDB chạy ở chế độ replica set để hỗ trợ transaction.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

// NewTransactionManager tạo TransactionManager từ client MongoDB.
func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction chạy fn trong một transaction, tự động commit/abort.
// Lỗi nghiệp vụ (*common.Error) được trả về nguyên vẹn để handler map sang HTTP status.
// Event dữ liệu phát bên trong fn được gom lại và chỉ dispatch sau khi commit;
// transaction abort thì bỏ, closure bị WithTransaction chạy lại thì không phát trùng.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", common.ErrTransaction)
	}
	defer session.EndSession(ctx)

	bufCtx, buf := events.WithBuffer(ctx)
	_, err = session.WithTransaction(bufCtx, func(sessCtx mongo.SessionContext) (any, error) {
		buf.Reset()
		return nil, fn(sessCtx)
	})

	if err != nil {
		var appErr *common.Error
		if errors.As(err, &appErr) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	buf.Flush(ctx)
	return nil
}
