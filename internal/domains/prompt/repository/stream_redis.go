package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/domains/prompt/model"
)

const changeChannel = "prompts:changes"

// redisChangeStream fans prompt mutations out over redis pub/sub. Delivery is
// at-most-once: subscribers that reconnect re-seed from the backend instead of
// replaying missed events.
type redisChangeStream struct {
	client *redis.Client
}

// NewRedisChangeStream - Constructor
func NewRedisChangeStream(client *redis.Client) ChangeStream {
	return &redisChangeStream{client: client}
}

func (s *redisChangeStream) Publish(ctx context.Context, event model.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := s.client.Publish(ctx, changeChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

func (s *redisChangeStream) Subscribe(ctx context.Context) (<-chan model.ChangeEvent, func(), error) {
	sub := s.client.Subscribe(ctx, changeChannel)

	// Wait for the subscription to be confirmed so no event published after
	// this call returns can be missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe change stream: %w", err)
	}

	events := make(chan model.ChangeEvent, 64)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var event model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("change stream: dropping undecodable event")
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		if err := sub.Close(); err != nil {
			log.Debug().Err(err).Msg("change stream: close subscription")
		}
	}
	return events, stop, nil
}
