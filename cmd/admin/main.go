package main

import (
	"fmt"
	"log"
	"os"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/storage"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage: admin <command> [args]")
	fmt.Println("  rooms [limit]   list the most recent archived rooms (default 20)")
	fmt.Println("  count           print archived and active room totals")
	fmt.Println("  stats           print the counters last published to redis")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var db *gorm.DB
	if cfg.DatabaseDSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
	}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		defer rdb.Close()
	}
	storageSvc := storage.NewStorageService(db, rdb)

	switch os.Args[1] {
	case "rooms":
		limit := 20
		if len(os.Args) > 2 {
			limit, err = strconv.Atoi(os.Args[2])
			if err != nil || limit <= 0 {
				fmt.Println("Invalid limit. Please provide a positive integer.")
				os.Exit(1)
			}
		}
		if err := listRooms(storageSvc, limit); err != nil {
			log.Fatalf("Error listing rooms: %v", err)
		}
	case "count":
		total, active, err := storageSvc.CountRooms()
		if err != nil {
			log.Fatalf("Error counting rooms: %v", err)
		}
		fmt.Printf("Rooms archived: %d (active: %d)\n", total, active)
	case "stats":
		stats, err := storageSvc.LatestStats()
		if err != nil {
			log.Fatalf("Error reading stats: %v", err)
		}
		if len(stats) == 0 {
			fmt.Println("No stats published yet.")
			return
		}
		for _, k := range []string{"onlineUsers", "waitingUsers", "activeChats", "totalChatsCreated", "takenAt"} {
			fmt.Printf("%-18s %s\n", k, stats[k])
		}
	default:
		usage()
	}
}

func listRooms(s storage.Storage, limit int) error {
	rooms, err := s.GetRecentRooms(limit)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		ended := "-"
		if r.EndedAt != nil {
			ended = r.EndedAt.Format(time.RFC3339)
		}
		fmt.Printf("%s  %s  %-20s <-> %-20s  msgs=%d  active=%t  ended=%s (%s)\n",
			r.RoomID, r.StartedAt.Format(time.RFC3339), r.User1Location, r.User2Location,
			r.MessageCount, r.IsActive, ended, r.EndReason)
	}
	return nil
}
