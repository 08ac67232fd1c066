package chathub

import (
	"strangerchat/backend/internal/models"
	"time"
)

// WaitingQueue is the FIFO of users looking for a partner.
// A connection id appears at most once. Not safe for concurrent use.
type WaitingQueue struct {
	entries []*models.UserProfile
}

// NewWaitingQueue creates an empty queue.
func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{}
}

// Enqueue appends profile to the tail. It returns false, leaving the queue
// untouched, when the connection is already waiting.
func (q *WaitingQueue) Enqueue(profile *models.UserProfile) bool {
	if q.Contains(profile.ConnectionID) {
		return false
	}
	q.entries = append(q.entries, profile)
	return true
}

// DequeueHead pops the oldest entry.
func (q *WaitingQueue) DequeueHead() (*models.UserProfile, bool) {
	if len(q.entries) == 0 {
		return nil, false
	}
	head := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	return head, true
}

// RemoveByConnectionID takes connID out of the queue wherever it is.
func (q *WaitingQueue) RemoveByConnectionID(connID string) (*models.UserProfile, bool) {
	for i, p := range q.entries {
		if p.ConnectionID == connID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// Contains reports whether connID is waiting.
func (q *WaitingQueue) Contains(connID string) bool {
	for _, p := range q.entries {
		if p.ConnectionID == connID {
			return true
		}
	}
	return false
}

// Size returns the number of waiting users.
func (q *WaitingQueue) Size() int {
	return len(q.entries)
}

// Snapshot returns the waiting profiles in queue order.
func (q *WaitingQueue) Snapshot() []*models.UserProfile {
	return append([]*models.UserProfile{}, q.entries...)
}

// FilterLive removes and returns the entries whose connection is no longer live
// or that have been waiting longer than maxAge. Survivors keep their order.
func (q *WaitingQueue) FilterLive(isLive func(connID string) bool, now time.Time, maxAge time.Duration) []*models.UserProfile {
	var removed []*models.UserProfile
	kept := q.entries[:0]
	for _, p := range q.entries {
		if !isLive(p.ConnectionID) || now.Sub(p.JoinedAt) >= maxAge {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = kept
	return removed
}
