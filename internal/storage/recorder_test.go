package storage_test

import (
	"context"
	"errors"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/models"
	"strangerchat/backend/internal/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ chathub.Archiver = (*storage.Recorder)(nil)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveRoom(room *models.RoomRecord) error {
	return m.Called(room).Error(0)
}

func (m *MockStorage) CloseRoom(roomID string, reason models.EndReason, endedAt time.Time, messageCount int) error {
	return m.Called(roomID, reason, endedAt, messageCount).Error(0)
}

func (m *MockStorage) PublishStats(stats models.Stats) error {
	return m.Called(stats).Error(0)
}

func (m *MockStorage) GetRecentRooms(limit int) ([]models.RoomRecord, error) {
	args := m.Called(limit)
	rooms, _ := args.Get(0).([]models.RoomRecord)
	return rooms, args.Error(1)
}

func (m *MockStorage) CountRooms() (int64, int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func TestRecorder_ForwardsInOrder(t *testing.T) {
	store := new(MockStorage)
	ended := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	stats := models.Stats{OnlineUsers: 2, ActiveChats: 1, TotalChatsCreated: 1}

	var calls []string
	store.On("SaveRoom", mock.MatchedBy(func(r *models.RoomRecord) bool { return r.RoomID == "room-1" })).
		Run(func(mock.Arguments) { calls = append(calls, "save") }).Return(nil).Once()
	store.On("PublishStats", stats).
		Run(func(mock.Arguments) { calls = append(calls, "stats") }).Return(nil).Once()
	store.On("CloseRoom", "room-1", models.EndReasonEnded, ended, 3).
		Run(func(mock.Arguments) { calls = append(calls, "close") }).Return(nil).Once()

	rec := storage.NewRecorder(store, 8)
	rec.RoomOpened(models.RoomRecord{RoomID: "room-1", IsActive: true})
	rec.StatsChanged(stats)
	rec.RoomClosed("room-1", models.EndReasonEnded, ended, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	store.AssertExpectations(t)
	assert.Equal(t, []string{"save", "stats", "close"}, calls)
}

func TestRecorder_KeepsGoingAfterErrors(t *testing.T) {
	store := new(MockStorage)
	store.On("PublishStats", mock.Anything).Return(errors.New("redis down")).Twice()

	rec := storage.NewRecorder(store, 4)
	rec.StatsChanged(models.Stats{OnlineUsers: 1})
	rec.StatsChanged(models.Stats{OnlineUsers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotPanics(t, func() { rec.Run(ctx) })

	store.AssertNumberOfCalls(t, "PublishStats", 2)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := new(MockStorage)
	store.On("PublishStats", mock.Anything).Return(nil)

	rec := storage.NewRecorder(store, 1)
	rec.StatsChanged(models.Stats{OnlineUsers: 1})
	rec.StatsChanged(models.Stats{OnlineUsers: 2})
	rec.StatsChanged(models.Stats{OnlineUsers: 3})

	assert.Equal(t, int64(2), rec.Dropped())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)
	store.AssertCalled(t, "PublishStats", models.Stats{OnlineUsers: 1})
	store.AssertNumberOfCalls(t, "PublishStats", 1)
}

func TestRecorder_RunProcessesWhileLive(t *testing.T) {
	store := new(MockStorage)
	done := make(chan struct{})
	store.On("SaveRoom", mock.Anything).Run(func(mock.Arguments) { close(done) }).Return(nil).Once()

	rec := storage.NewRecorder(store, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rec.Run(ctx)

	rec.RoomOpened(models.RoomRecord{RoomID: "live"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not forward the room")
	}
}

func TestService_NilBackendsAreSkipped(t *testing.T) {
	svc := storage.NewStorageService(nil, nil)

	assert.NoError(t, svc.Migrate())
	assert.NoError(t, svc.SaveRoom(&models.RoomRecord{RoomID: "r"}))
	assert.NoError(t, svc.CloseRoom("r", models.EndReasonDisconnected, time.Now(), 0))
	assert.NoError(t, svc.PublishStats(models.Stats{}))

	_, err := svc.GetRecentRooms(10)
	assert.ErrorIs(t, err, storage.ErrNoDatabase)
	_, _, err = svc.CountRooms()
	assert.ErrorIs(t, err, storage.ErrNoDatabase)
	_, err = svc.LatestStats()
	assert.ErrorIs(t, err, storage.ErrNoRedis)
}
