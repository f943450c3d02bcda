package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher publishes each event on channel dinepos:<outlet>:<table>.
func NewRedisPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

func Channel(event Event) string {
	return fmt.Sprintf("dinepos:%s:%s", event.OutletID, event.Table)
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) error {
	event = stamp(event)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	receivers, err := p.client.Publish(ctx, Channel(event), body).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"channel":   Channel(event),
		"type":      event.Type,
		"receivers": receivers,
	}).Debug("realtime event published")
	return nil
}

// Close leaves the shared client to its owner.
func (p *redisPublisher) Close() error {
	return nil
}
