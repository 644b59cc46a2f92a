package events

import (
	"context"
	"testing"
	"time"
)

func waitEvent(t *testing.T, ch <-chan DataChangeEvent) DataChangeEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("không nhận được event")
		return DataChangeEvent{}
	}
}

func assertNoEvent(t *testing.T, ch <-chan DataChangeEvent) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("không mong đợi event nhưng nhận được %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmitDataChanged_KhongBufferThiDispatchNgay(t *testing.T) {
	ch := make(chan DataChangeEvent, 8)
	OnDataChanged(func(_ context.Context, e DataChangeEvent) { ch <- e })

	EmitDataChanged(context.Background(), DataChangeEvent{CollectionName: "leads", Operation: OpInsert})

	e := waitEvent(t, ch)
	if e.Operation != OpInsert {
		t.Errorf("operation = %q, muốn %q", e.Operation, OpInsert)
	}
}

func TestEventBuffer_GomDenKhiFlush(t *testing.T) {
	ch := make(chan DataChangeEvent, 8)
	OnDataChanged(func(_ context.Context, e DataChangeEvent) { ch <- e })

	ctx, buf := WithBuffer(context.Background())
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "leads", Operation: OpInsert})
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "leads", Operation: OpUpdate})

	// Chưa flush thì chưa dispatch
	assertNoEvent(t, ch)

	buf.Flush(context.Background())
	waitEvent(t, ch)
	waitEvent(t, ch)
}

func TestEventBuffer_ResetBoEventCu(t *testing.T) {
	ch := make(chan DataChangeEvent, 8)
	OnDataChanged(func(_ context.Context, e DataChangeEvent) { ch <- e })

	ctx, buf := WithBuffer(context.Background())

	// Lần chạy đầu của closure bị retry: event phải bị bỏ
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "leads", Operation: OpInsert, Document: "lần 1"})
	buf.Reset()
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "leads", Operation: OpInsert, Document: "lần 2"})

	buf.Flush(context.Background())
	e := waitEvent(t, ch)
	if e.Document != "lần 2" {
		t.Errorf("document = %v, muốn event của lần chạy sau cùng", e.Document)
	}
	assertNoEvent(t, ch)
}

func TestEventBuffer_AbortKhongDispatch(t *testing.T) {
	ch := make(chan DataChangeEvent, 8)
	OnDataChanged(func(_ context.Context, e DataChangeEvent) { ch <- e })

	ctx, _ := WithBuffer(context.Background())
	EmitDataChanged(ctx, DataChangeEvent{CollectionName: "leads", Operation: OpInsert})

	// Không flush (transaction abort) thì event không bao giờ được dispatch
	assertNoEvent(t, ch)
}
