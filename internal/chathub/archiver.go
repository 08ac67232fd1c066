package chathub

import (
	"strangerchat/backend/internal/models"
	"time"
)

// Archiver receives room lifecycle and stats notifications.
// Implementations are called with the hub lock held and must not block.
type Archiver interface {
	RoomOpened(record models.RoomRecord)
	RoomClosed(roomID string, reason models.EndReason, endedAt time.Time, messageCount int)
	StatsChanged(stats models.Stats)
}

type nopArchiver struct{}

func (nopArchiver) RoomOpened(models.RoomRecord) {}
func (nopArchiver) RoomClosed(string, models.EndReason, time.Time, int) {}
func (nopArchiver) StatsChanged(models.Stats) {}
