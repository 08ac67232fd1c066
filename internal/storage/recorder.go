package storage

import (
	"context"
	"log"
	"strangerchat/backend/internal/models"
	"sync/atomic"
	"time"
)

type recordKind int

const (
	roomOpened recordKind = iota
	roomClosed
	statsChanged
)

type record struct {
	kind recordKind

	room         models.RoomRecord
	roomID       string
	reason       models.EndReason
	endedAt      time.Time
	messageCount int
	stats        models.Stats
}

// Recorder forwards hub notifications to a Storage from its own goroutine, so
// callers holding the hub lock never wait on the database or redis.
// When the buffer is full new notifications are dropped and counted.
type Recorder struct {
	store   Storage
	events  chan record
	dropped atomic.Int64
}

// NewRecorder creates a recorder with room for buffer pending notifications.
func NewRecorder(store Storage, buffer int) *Recorder {
	return &Recorder{
		store:  store,
		events: make(chan record, buffer),
	}
}

func (r *Recorder) RoomOpened(room models.RoomRecord) {
	r.push(record{kind: roomOpened, room: room})
}

func (r *Recorder) RoomClosed(roomID string, reason models.EndReason, endedAt time.Time, messageCount int) {
	r.push(record{kind: roomClosed, roomID: roomID, reason: reason, endedAt: endedAt, messageCount: messageCount})
}

func (r *Recorder) StatsChanged(stats models.Stats) {
	r.push(record{kind: statsChanged, stats: stats})
}

// Dropped is the number of notifications lost to a full buffer.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) push(rec record) {
	select {
	case r.events <- rec:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			log.Printf("WARNING: archive buffer full, %d notifications dropped so far", n)
		}
	}
}

// Run applies notifications until ctx is cancelled, then flushes what is still buffered.
func (r *Recorder) Run(ctx context.Context) {
	log.Println("Archive recorder started.")
	for {
		select {
		case rec := <-r.events:
			r.apply(rec)
		case <-ctx.Done():
			r.drain()
			log.Println("Archive recorder stopped.")
			return
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case rec := <-r.events:
			r.apply(rec)
		default:
			return
		}
	}
}

func (r *Recorder) apply(rec record) {
	switch rec.kind {
	case roomOpened:
		if err := r.store.SaveRoom(&rec.room); err != nil {
			log.Printf("ERROR: Failed to archive room %s: %v", rec.room.RoomID, err)
		}
	case roomClosed:
		if err := r.store.CloseRoom(rec.roomID, rec.reason, rec.endedAt, rec.messageCount); err != nil {
			log.Printf("ERROR: Failed to close archived room %s: %v", rec.roomID, err)
		}
	case statsChanged:
		if err := r.store.PublishStats(rec.stats); err != nil {
			log.Printf("ERROR: Failed to publish stats: %v", err)
		}
	}
}
