package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/DavidPARK0417/draiger-sub002/events"
)

// Topic은 토픽의 기본 이름과 DLQ 토픽 이름을 관리합니다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ는 DLQ 토픽 이름을 반환합니다 (예: my_topic.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
// Payload 는 events 패키지의 직렬화된 이벤트이고 Type 으로 역직렬화 대상을 고릅니다.
type Event struct {
	ID        string           `json:"id"`
	Type      events.EventType `json:"type"`
	Payload   []byte           `json:"payload"`
	LastError string           `json:"last_error,omitempty"`
}

// NewEvent wraps a typed event from the events package.
func NewEvent(id string, typed any) (Event, error) {
	data, eventType, err := events.SerializeEvent(typed)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Type: eventType, Payload: data}, nil
}

// Decode returns the typed event carried by e.
func (e Event) Decode() (any, error) {
	return events.DeserializeEvent(e.Type, e.Payload)
}

// EventHandler는 이벤트 처리 함수의 시그니처입니다.
type EventHandler func(ctx context.Context, event Event) error

// EventBus 인터페이스는 이벤트 발행 및 구독의 추상화를 정의합니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe는 기본 토픽을 구독하여 handler 를 실행합니다. ctx 가 끝나면 반환합니다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	Close()
}

// ErrDLQPublishFailed는 처리 실패 이벤트를 DLQ에 발행하지 못했을 때 반환되는 오류입니다.
var ErrDLQPublishFailed = errors.New("DLQ 발행 실패")

// handleOrDeadLetter runs handler and sends failed events to the DLQ.
// It returns nil when the offset may be committed.
func handleOrDeadLetter(ctx context.Context, bus EventBus, topic Topic, evt Event, handler EventHandler) error {
	err := handler(ctx, evt)
	if err == nil {
		return nil
	}
	evt.LastError = err.Error()
	if pubErr := bus.Publish(ctx, topic.DLQ(), evt); pubErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrDLQPublishFailed, topic.DLQ(), pubErr)
	}
	return nil
}
