package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelEvents = "servswap_events"
)

// 事件类型
const (
	EventChatMessage  = "chat_message"
	EventNotification = "notification"
	EventSwapUpdated  = "swap_updated"
)

// Event 推送给在线用户的实时事件
type Event struct {
	Type   string          `json:"type"`
	UserID int64           `json:"user_id"` // 推送目标用户
	SwapID int64           `json:"swap_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent 发布实时事件
func (p *Publisher) PublishEvent(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, ChannelEvents, data).Err()
}

// PublishTo 序列化 payload 并发布给指定用户
func (p *Publisher) PublishTo(ctx context.Context, userID int64, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.PublishEvent(ctx, &Event{
		Type:   eventType,
		UserID: userID,
		Data:   data,
	})
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅实时事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	pubsub := s.client.Subscribe(ctx, ChannelEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
