package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"myhometech/internal/logger"
)

// relayEnvelope is the wire format on the Redis channel. Exactly one of
// UserID or Role is set.
type relayEnvelope struct {
	UserID  int64           `json:"user_id,omitempty"`
	Role    string          `json:"role,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay publishes pushes on a Redis channel. Every instance runs Start,
// which delivers whatever arrives on the channel to its local hub, so a push
// issued by one replica reaches sockets held by any replica.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisRelay wires a relay. hub may be nil for publish-only processes.
func NewRedisRelay(client *redis.Client, channel string, hub *Hub, l *zap.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger.OrNop(l).Named("relay"),
	}
}

func (r *RedisRelay) PublishToUser(ctx context.Context, userID int64, v any) error {
	return r.publish(ctx, relayEnvelope{UserID: userID}, v)
}

func (r *RedisRelay) PublishToRole(ctx context.Context, role string, v any) error {
	return r.publish(ctx, relayEnvelope{Role: role}, v)
}

func (r *RedisRelay) publish(ctx context.Context, env relayEnvelope, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	env.Payload = payload
	msg, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, msg).Err()
}

// Start subscribes and returns once the subscription is confirmed; delivery
// continues in the background until ctx is cancelled.
func (r *RedisRelay) Start(ctx context.Context) error {
	if r.hub == nil {
		return errors.New("relay has no hub to deliver to")
	}

	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.deliver(msg.Payload)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) deliver(raw string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		r.logger.Warn("dropping malformed relay message", zap.Error(err))
		return
	}
	switch {
	case env.UserID > 0:
		r.hub.SendToUser(env.UserID, env.Payload)
	case env.Role != "":
		r.hub.SendToRole(env.Role, env.Payload)
	default:
		r.logger.Warn("relay message without target")
	}
}
