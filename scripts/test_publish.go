// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// navigationEvent повторяет форму domain.Event для ручной публикации
type navigationEvent struct {
	Type              string                 `json:"eventType"`
	SessionID         string                 `json:"sessionId,omitempty"`
	DistanceRemaining float64                `json:"distanceRemaining"`
	DurationRemaining float64                `json:"durationRemaining"`
	Data              map[string]interface{} `json:"data,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	sessionID := uuid.New().String()
	now := time.Now()

	events := []navigationEvent{
		{
			Type:              "navigation_running",
			SessionID:         sessionID,
			DistanceRemaining: 4200,
			DurationRemaining: 360,
			Data: map[string]interface{}{
				"timestamp":      now.Format(time.RFC3339Nano),
				"waypoint_count": 2,
				"route_distance": 4200.0,
				"route_duration": 360.0,
				"simulated":      false,
			},
		},
		{
			Type:              "progress_change",
			SessionID:         sessionID,
			DistanceRemaining: 2100,
			DurationRemaining: 180,
			Data: map[string]interface{}{
				"timestamp": now.Add(3 * time.Minute).Format(time.RFC3339Nano),
			},
		},
		{
			Type:              "on_arrival",
			SessionID:         sessionID,
			DistanceRemaining: 12,
			DurationRemaining: 2,
			Data: map[string]interface{}{
				"timestamp": now.Add(6 * time.Minute).Format(time.RFC3339Nano),
			},
		},
	}

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}

		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: "stream:navigation:events",
			Values: map[string]interface{}{"data": payload},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}

		fmt.Printf("Published %s as %s\n", event.Type, id)
	}

	fmt.Printf("Done, session %s\n", sessionID)
}
