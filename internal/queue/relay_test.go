package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/database/dbtest"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev model.BookingEvent) error {
	return m.Called(ev.EventID).Error(0)
}

func seedEvents(t *testing.T, repo *repository.OutboxRepo, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, repo.Insert(context.Background(), &model.BookingEvent{
			EventID: ids[i], Kind: queue.KindBookingConfirmed, Payload: `{"event_id":"` + ids[i] + `"}`,
		}))
	}
	return ids
}

func TestRelay_PublishesInOrderAndMarks(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepo(db)
	ids := seedEvents(t, repo, 3)

	pub := &mockPublisher{}
	var order []string
	for _, id := range ids {
		pub.On("Publish", id).Return(nil).Run(func(args mock.Arguments) {
			order = append(order, args.String(0))
		}).Once()
	}
	log, _ := test.NewNullLogger()
	relay := queue.NewRelay(repo, pub, 10, log)

	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, ids, order)
	pub.AssertExpectations(t)

	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nothing left to publish")
}

func TestRelay_StopsAtFirstFailure(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepo(db)
	ids := seedEvents(t, repo, 3)

	pub := &mockPublisher{}
	pub.On("Publish", ids[0]).Return(nil).Once()
	pub.On("Publish", ids[1]).Return(errors.New("broker down")).Once()
	log, _ := test.NewNullLogger()
	relay := queue.NewRelay(repo, pub, 10, log)

	n, err := relay.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	pub.AssertNotCalled(t, "Publish", ids[2])

	pending, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[1], pending[0].EventID)
}

func TestRelay_BatchSize(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepo(db)
	seedEvents(t, repo, 5)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything).Return(nil)
	log, _ := test.NewNullLogger()

	n, err := queue.NewRelay(repo, pub, 2, log).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRelay_Schedule(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewOutboxRepo(db)
	seedEvents(t, repo, 1)

	published := make(chan struct{}, 1)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case published <- struct{}{}:
		default:
		}
	})
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	_, err = queue.NewRelay(repo, pub, 10, log).Schedule(s, 20*time.Millisecond)
	require.NoError(t, err)
	s.Start()
	defer func() { _ = s.Shutdown() }()

	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("relay job did not run")
	}
}
