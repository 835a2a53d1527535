package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/vendura/automation/pkg/events"
)

// WatermillEventBus implements EventBus over any watermill publisher and
// subscriber pair (gochannel in-process, kafka in production).
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// NewWatermillEventBus creates an event bus over watermill pub/sub.
func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) PublishBusiness(_ context.Context, event *events.BusinessEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal business event: %w", err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.MetadataKey, event.ID)
	msg.Metadata.Set(events.TypeMetadataKey, string(event.Type))

	return eb.publisher.Publish(events.BusinessTopic, msg)
}

func (eb *WatermillEventBus) PublishLifecycle(_ context.Context, key string, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lifecycle event: %w", err)
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.MetadataKey, key)
	msg.Metadata.Set(events.TypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.LifecycleTopic, msg)
}

// SubscribeBusiness consumes the business topic and feeds each decoded event
// to the handler. Messages that fail decoding are acked and dropped; handler
// errors nack for redelivery.
func (eb *WatermillEventBus) SubscribeBusiness(ctx context.Context, handler BusinessHandler) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.BusinessTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var event events.BusinessEvent

			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				msg.Ack()

				continue
			}

			if err := handler(ctx, &event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
