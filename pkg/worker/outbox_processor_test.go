package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/pkg/logger"
	"github.com/guhospital/hospital-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "worker")

type fakeOutboxRepo struct {
	pending  []*model.OutboxEvent
	statuses map[uuid.UUID]model.OutboxStatus
	errors   map[uuid.UUID]string
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		pending:  events,
		statuses: make(map[uuid.UUID]model.OutboxStatus),
		errors:   make(map[uuid.UUID]string),
	}
}

func (f *fakeOutboxRepo) Create(context.Context, *model.OutboxEvent) error { return nil }

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	f.statuses[id] = status
	if errorMessage != nil {
		f.errors[id] = *errorMessage
	}
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type fakeBroker struct {
	published map[string][]interface{}
	failures  int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][]interface{})}
}

func (b *fakeBroker) Publish(_ context.Context, channel string, message interface{}) error {
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	b.published[channel] = append(b.published[channel], message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBroker) Close() error { return nil }

func testEvent(eventType string) *model.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"k": "v"})
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	booked := testEvent("appointment.booked")
	paid := testEvent("billing.paid")
	repo := newFakeOutboxRepo(booked, paid)
	broker := newFakeBroker()

	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published["appointment.booked"], 1)
	assert.Len(t, broker.published["billing.paid"], 1)
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[booked.ID])
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[paid.ID])
}

func TestProcessEventRetriesTransientFailure(t *testing.T) {
	event := testEvent("appointment.booked")
	repo := newFakeOutboxRepo(event)
	broker := newFakeBroker()
	broker.failures = 2

	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published["appointment.booked"], 1)
	assert.Equal(t, model.OutboxStatusProcessed, repo.statuses[event.ID])
}

func TestProcessEventMarksFailedAfterRetries(t *testing.T) {
	event := testEvent("appointment.booked")
	repo := newFakeOutboxRepo(event)
	broker := newFakeBroker()
	broker.failures = 10

	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	// processEvents keeps going past a failing event.
	require.NoError(t, p.processEvents(context.Background()))

	assert.Empty(t, broker.published)
	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[event.ID])
	assert.NotEmpty(t, repo.errors[event.ID])
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	repo := newFakeOutboxRepo()
	broker := newFakeBroker()

	assert.Panics(t, func() {
		NewOutboxProcessor(repo, broker, OutboxProcessorConfig{}, logger.NewLogger(nil), testMetrics)
	})
}
