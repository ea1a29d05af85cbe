package services

import (
	"context"
	"errors"
	"testing"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/records"
	"financas/internal/records/memory"
)

type recordedPublish struct {
	id      int64
	op      string
	version int64
}

type fakePublisher struct {
	published []recordedPublish
	err       error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id int64, op string, version int64) error {
	f.published = append(f.published, recordedPublish{id, op, version})
	return f.err
}

func validTx() core.Transaction {
	d, _ := core.ParseDate("2024-02-10")
	return core.Transaction{Amount: core.Money{Cents: 20000}, Date: d, Category: "Food", Bank: "X"}
}

func TestCreatePublishesSyncMessage(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(nil, nil), pub)

	id, err := svc.Create(context.Background(), validTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.published))
	}
	if p := pub.published[0]; p.id != id || p.op != amqp.OpCreate || p.version != 1 {
		t.Fatalf("unexpected publish: %+v", p)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(memory.New(nil, nil), pub)

	if _, err := svc.Create(context.Background(), validTx()); err != nil {
		t.Fatalf("create must succeed despite publish failure, got %v", err)
	}
}

func TestUpdateAndDeletePublish(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil, nil)
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)

	id, err := svc.Create(ctx, validTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Update(ctx, id, validTx()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(pub.published) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(pub.published))
	}
	if pub.published[1].op != amqp.OpUpdate || pub.published[2].op != amqp.OpDelete {
		t.Fatalf("unexpected ops: %+v", pub.published)
	}
}

func TestStoreFailureSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(nil, nil), pub)

	if err := svc.Delete(context.Background(), 404); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatalf("failed write must not publish: %+v", pub.published)
	}
}

func TestNilPublisherIsAllowed(t *testing.T) {
	svc := NewTransactionService(memory.New(nil, nil), nil)
	if _, err := svc.Create(context.Background(), validTx()); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
}
