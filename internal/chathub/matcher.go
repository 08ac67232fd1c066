package chathub

import (
	"strangerchat/backend/internal/models"
	"time"
)

// MatchResult is the outcome of FindOrQueue. Room is nil when the requester was queued.
type MatchResult struct {
	Room    *models.ChatRoom
	Partner *models.UserProfile
	// Discarded is a stale head of queue dropped while serving the request.
	Discarded *models.UserProfile
}

// Paired reports whether the request produced a room.
func (r MatchResult) Paired() bool {
	return r.Room != nil
}

// MatcherService pairs users strictly in arrival order.
// Interests are carried along for display but never rank or filter candidates.
type MatcherService struct {
	Queue *WaitingQueue
	Rooms *RoomStore

	// isLive asks the transport whether a connection is still open.
	isLive func(connID string) bool
	// TotalRoomsCreated counts every pairing since start.
	TotalRoomsCreated int
}

// NewMatcherService creates a matcher over the given queue and room store.
func NewMatcherService(q *WaitingQueue, rooms *RoomStore, isLive func(connID string) bool) *MatcherService {
	return &MatcherService{
		Queue:  q,
		Rooms:  rooms,
		isLive: isLive,
	}
}

// FindOrQueue pairs req with the head of the queue, or queues req.
//
// A head whose connection died before the sweeper noticed is dropped and the
// requester takes its place at the tail; no error is surfaced for that case.
// Callers must not submit a connection that is already queued or in a room.
func (m *MatcherService) FindOrQueue(req *models.UserProfile, now time.Time) MatchResult {
	candidate, ok := m.Queue.DequeueHead()
	if !ok {
		m.Queue.Enqueue(req)
		return MatchResult{}
	}

	if !m.isLive(candidate.ConnectionID) {
		m.Queue.Enqueue(req)
		return MatchResult{Discarded: candidate}
	}

	room := m.Rooms.Create(req, candidate, now)
	m.TotalRoomsCreated++
	return MatchResult{Room: room, Partner: candidate}
}
