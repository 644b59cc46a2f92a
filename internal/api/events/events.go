// Package events cung cấp cơ chế event trung tâm khi dữ liệu thay đổi qua CRUD.
// Các service CRUD không cần override từng method, BaseServiceMongoImpl tự động phát event.
// Logic phản ứng (gửi email thông báo, cache invalidation, ...) đăng ký qua OnDataChanged.
package events

import (
	"context"
	"sync"
)

// OpInsert, OpUpdate, OpUpsert, OpDelete là các loại thao tác CRUD.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// DataChangeEvent mô tả sự kiện thay đổi dữ liệu.
// Document là bản ghi sau khi thay đổi (nil nếu delete).
type DataChangeEvent struct {
	CollectionName string
	Operation      string
	Document       interface{}
}

// DataChangeHandler xử lý sự kiện thay đổi dữ liệu.
type DataChangeHandler func(ctx context.Context, e DataChangeEvent)

var (
	handlers   []DataChangeHandler
	handlersMu sync.RWMutex
)

// OnDataChanged đăng ký handler. Gọi khi init (ví dụ từ notification package).
func OnDataChanged(h DataChangeHandler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers = append(handlers, h)
}

// EmitDataChanged phát sự kiện. Gọi từ BaseServiceMongoImpl sau mỗi CRUD thành công.
// Nếu context mang EventBuffer (đang trong transaction) thì event chỉ được gom lại,
// chỉ dispatch khi buffer Flush sau commit. Ngoài transaction thì dispatch ngay.
func EmitDataChanged(ctx context.Context, e DataChangeEvent) {
	if b := bufferFrom(ctx); b != nil {
		b.add(e)
		return
	}
	dispatch(ctx, e)
}

// dispatch chạy từng handler trong goroutine riêng, panic được recover
// để không ảnh hưởng handler khác.
func dispatch(ctx context.Context, e DataChangeEvent) {
	handlersMu.RLock()
	list := make([]DataChangeHandler, len(handlers))
	copy(list, handlers)
	handlersMu.RUnlock()

	for _, h := range list {
		go func(fn DataChangeHandler) {
			defer func() {
				if r := recover(); r != nil {
					// Log panic nhưng không làm sập app
					// Logger có thể chưa init khi event chạy sớm
					_ = r
				}
			}()
			fn(ctx, e)
		}(h)
	}
}

// EventBuffer gom event phát ra bên trong một transaction chưa commit.
// Transaction abort thì event bị bỏ, closure chạy lại thì Reset để không phát trùng.
type EventBuffer struct {
	mu     sync.Mutex
	events []DataChangeEvent
}

type bufferCtxKey struct{}

// WithBuffer gắn một EventBuffer mới vào context.
// EmitDataChanged với context này (và mọi context con) sẽ gom event thay vì dispatch.
func WithBuffer(ctx context.Context) (context.Context, *EventBuffer) {
	b := &EventBuffer{}
	return context.WithValue(ctx, bufferCtxKey{}, b), b
}

func bufferFrom(ctx context.Context) *EventBuffer {
	b, _ := ctx.Value(bufferCtxKey{}).(*EventBuffer)
	return b
}

func (b *EventBuffer) add(e DataChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Reset bỏ các event đã gom. Gọi ở đầu mỗi lần transaction closure chạy lại.
func (b *EventBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

// Flush dispatch toàn bộ event đã gom rồi làm rỗng buffer. Gọi sau khi commit thành công.
func (b *EventBuffer) Flush(ctx context.Context) {
	b.mu.Lock()
	list := b.events
	b.events = nil
	b.mu.Unlock()

	for _, e := range list {
		dispatch(ctx, e)
	}
}
