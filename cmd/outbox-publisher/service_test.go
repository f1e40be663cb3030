package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andreviana/cellshop-pos-backend/pkg/config"
	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

type fakeRepo struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
	failed    map[uuid.UUID]string
}

func newFakeRepo(events ...models.OutboxEvent) *fakeRepo {
	return &fakeRepo{pending: events, failed: map[uuid.UUID]string{}}
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed[id] = err.Error()
	return nil
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	errs     map[string]error
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if err, ok := f.errs[msg.Attributes["event_id"]]; ok {
		return fakeResult{err: err}
	}
	return fakeResult{}
}

func testEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"sale_id": uuid.NewString()})
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateSale,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func newPublisherService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{}
	logg := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func TestPublishBatchMarksEventsPublished(t *testing.T) {
	first := testEvent(enums.OutboxEventSaleCreated)
	second := testEvent(enums.OutboxEventSaleRefunded)
	repo := newFakeRepo(first, second)
	pub := &fakePublisher{}
	svc := newPublisherService(t, repo, pub)

	published, err := svc.publishBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, published)
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, repo.published)
	require.Empty(t, repo.failed)

	require.Len(t, pub.messages, 2)
	msg := pub.messages[0]
	require.Equal(t, string(enums.OutboxEventSaleCreated), msg.Attributes["event_type"])
	require.Equal(t, string(enums.OutboxAggregateSale), msg.Attributes["aggregate_type"])
	require.Equal(t, first.AggregateID.String(), msg.OrderingKey)
	require.JSONEq(t, string(first.Payload), string(msg.Data))
}

func TestPublishBatchRecordsFailuresAndContinues(t *testing.T) {
	bad := testEvent(enums.OutboxEventSaleCreated)
	good := testEvent(enums.OutboxEventFiadoSettled)
	repo := newFakeRepo(bad, good)
	pub := &fakePublisher{errs: map[string]error{
		bad.ID.String(): errors.New("topic unavailable"),
	}}
	svc := newPublisherService(t, repo, pub)

	published, err := svc.publishBatch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "topic unavailable")
	require.Equal(t, 1, published)
	require.Equal(t, []uuid.UUID{good.ID}, repo.published)
	require.Contains(t, repo.failed[bad.ID], "topic unavailable")
}

func TestPublishBatchHonorsBatchSize(t *testing.T) {
	events := []models.OutboxEvent{
		testEvent(enums.OutboxEventSaleCreated),
		testEvent(enums.OutboxEventSaleCreated),
		testEvent(enums.OutboxEventSaleCreated),
	}
	repo := newFakeRepo(events...)
	pub := &fakePublisher{}
	svc := newPublisherService(t, repo, pub)
	svc.batchSize = 2

	published, err := svc.publishBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, published)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := newPublisherService(t, newFakeRepo(), &fakePublisher{})
	require.Equal(t, defaultBatchSize, svc.batchSize)
	require.Equal(t, defaultMaxAttempts, svc.maxAttempts)
}

func TestNewServiceRequiresPublisher(t *testing.T) {
	cfg := &config.Config{}
	logg := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	_, err := NewService(ServiceParams{Config: cfg, Logger: logg, Repository: newFakeRepo()})
	require.Error(t, err)
}
