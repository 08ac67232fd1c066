package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strangerchat/backend/internal/models"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// StatsKey is the redis hash holding the latest counters.
	StatsKey = "chat:stats"
	// StatsChannel is the redis channel every counter change is published on.
	StatsChannel = "chat:stats"
)

var (
	ErrNoDatabase = errors.New("database is not configured")
	ErrNoRedis    = errors.New("redis is not configured")
)

type Storage interface {
	SaveRoom(room *models.RoomRecord) error
	CloseRoom(roomID string, reason models.EndReason, endedAt time.Time, messageCount int) error
	PublishStats(stats models.Stats) error

	GetRecentRooms(limit int) ([]models.RoomRecord, error)
	CountRooms() (total int64, active int64, err error)
}

// Service persists room metadata in PostgreSQL and publishes counters to Redis.
// Either backend may be nil, in which case its writes are skipped.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// Migrate creates or updates the room archive table.
func (s *Service) Migrate() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.AutoMigrate(&models.RoomRecord{})
}

// SaveRoom stores a freshly opened room.
func (s *Service) SaveRoom(room *models.RoomRecord) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Save(room).Error
}

// CloseRoom marks the room inactive and records why and when it ended.
func (s *Service) CloseRoom(roomID string, reason models.EndReason, endedAt time.Time, messageCount int) error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Model(&models.RoomRecord{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active":     false,
			"ended_at":      endedAt,
			"end_reason":    string(reason),
			"message_count": messageCount,
		}).Error
}

// PublishStats stores the counters in a redis hash and announces them on StatsChannel.
func (s *Service) PublishStats(stats models.Stats) error {
	if s.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	pipe := s.Redis.TxPipeline()
	pipe.HSet(s.Ctx, StatsKey, map[string]interface{}{
		"onlineUsers":       stats.OnlineUsers,
		"waitingUsers":      stats.WaitingUsers,
		"activeChats":       stats.ActiveChats,
		"totalChatsCreated": stats.TotalChatsCreated,
		"takenAt":           stats.TakenAt.UTC().Format(time.RFC3339),
	})
	pipe.Publish(s.Ctx, StatsChannel, string(payload))
	_, err = pipe.Exec(s.Ctx)
	return err
}

// GetRecentRooms returns up to limit archived rooms, newest first.
func (s *Service) GetRecentRooms(limit int) ([]models.RoomRecord, error) {
	if s.DB == nil {
		return nil, ErrNoDatabase
	}
	var rooms []models.RoomRecord
	if err := s.DB.Order("started_at desc").Limit(limit).Find(&rooms).Error; err != nil {
		log.Printf("ERROR: Failed to load recent rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// CountRooms returns how many rooms were archived and how many are still open.
func (s *Service) CountRooms() (int64, int64, error) {
	if s.DB == nil {
		return 0, 0, ErrNoDatabase
	}
	var total, active int64
	if err := s.DB.Model(&models.RoomRecord{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := s.DB.Model(&models.RoomRecord{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// LatestStats reads back the counters last written by PublishStats.
func (s *Service) LatestStats() (map[string]string, error) {
	if s.Redis == nil {
		return nil, ErrNoRedis
	}
	return s.Redis.HGetAll(s.Ctx, StatsKey).Result()
}
