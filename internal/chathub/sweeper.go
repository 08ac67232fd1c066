package chathub

import (
	"context"
	"log"
	"strangerchat/backend/internal/models"
	"time"

	"github.com/samber/lo"
)

// SweepResult reports what a sweep reclaimed.
type SweepResult struct {
	StaleWaiting   int
	AbandonedRooms int
	ExpiredRooms   int
}

// Changed reports whether the sweep removed anything.
func (r SweepResult) Changed() bool {
	return r.StaleWaiting+r.AbandonedRooms+r.ExpiredRooms > 0
}

// Sweep reconciles the queue and the rooms with connection liveness and age limits.
//
// Waiting entries are dropped when their connection is gone or they waited longer
// than the queue TTL. Rooms are dropped when no member is live any more, or when
// they outlived the room TTL; in the latter case live members get partner-disconnected.
func (m *ManagerService) Sweep() SweepResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var res SweepResult

	stale := m.Queue.FilterLive(m.isLive, now, m.cfg.QueueEntryTTL)
	for _, p := range stale {
		if !m.isLive(p.ConnectionID) {
			m.Registry.Remove(p.ConnectionID)
		}
	}
	res.StaleWaiting = len(stale)

	for _, room := range m.Rooms.All() {
		live := lo.Filter(room.Members[:], func(p *models.UserProfile, _ int) bool {
			return p != nil && m.isLive(p.ConnectionID)
		})
		switch {
		case len(live) == 0:
			m.Rooms.Delete(room.RoomID)
			m.archiver.RoomClosed(room.RoomID, models.EndReasonAbandoned, now, room.MessageCount)
			res.AbandonedRooms++
		case now.Sub(room.CreatedAt) > m.cfg.RoomTTL:
			m.Rooms.Delete(room.RoomID)
			for _, p := range live {
				m.sendToLocked(p.ConnectionID, models.Event{Name: models.EventPartnerDisconnected})
			}
			m.archiver.RoomClosed(room.RoomID, models.EndReasonExpired, now, room.MessageCount)
			res.ExpiredRooms++
		}
	}

	if res.StaleWaiting > 0 {
		log.Printf("Cleaned up %d inactive waiting users", res.StaleWaiting)
	}
	if n := res.AbandonedRooms + res.ExpiredRooms; n > 0 {
		log.Printf("Cleaned up %d inactive chats", n)
	}
	if res.Changed() {
		m.broadcastStatsLocked()
	}
	return res
}

// Sweeper runs Sweep on a fixed interval and logs the counters now and then.
type Sweeper struct {
	Hub           *ManagerService
	Interval      time.Duration
	StatsInterval time.Duration
}

// NewSweeper creates a sweeper for hub.
func NewSweeper(hub *ManagerService, interval, statsInterval time.Duration) *Sweeper {
	return &Sweeper{Hub: hub, Interval: interval, StatsInterval: statsInterval}
}

// sweep runs one pass; a panic is logged and the next tick tries again.
func (s *Sweeper) sweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Error in sweep: %v", r)
		}
	}()
	s.Hub.Sweep()
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("Sweeper started (every %s)", s.Interval)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	var statsC <-chan time.Time
	if s.StatsInterval > 0 {
		statsTicker := time.NewTicker(s.StatsInterval)
		defer statsTicker.Stop()
		statsC = statsTicker.C
	}

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-statsC:
			st := s.Hub.Stats()
			log.Printf("Stats - Connected: %d, Waiting: %d, Active Chats: %d, Total Chats Created: %d",
				st.OnlineUsers, st.WaitingUsers, st.ActiveChats, st.TotalChatsCreated)
		case <-ctx.Done():
			log.Println("Sweeper stopped.")
			return
		}
	}
}
