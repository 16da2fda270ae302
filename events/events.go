package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DavidPARK0417/draiger-sub002/models"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	// ContentInvalidated 는 원격 소스의 콘텐츠가 바뀌어 캐시를 비워야 함을 알린다.
	ContentInvalidated EventType = "content.invalidate"
)

const eventVersion = "1"

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "cachectl", "api" 등
	Version   string    `json:"version"`
}

// ContentInvalidatedEvent asks every API instance to drop cached results of one
// content type. An empty ContentType means every type.
type ContentInvalidatedEvent struct {
	BaseEvent
	ContentType models.ContentType `json:"content_type,omitempty"`
	Reason      string             `json:"reason,omitempty"`
}

func NewContentInvalidated(source string, ct models.ContentType, reason string) ContentInvalidatedEvent {
	return ContentInvalidatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      ContentInvalidated,
			Timestamp: time.Now().UTC(),
			Source:    source,
			Version:   eventVersion,
		},
		ContentType: ct,
		Reason:      reason,
	}
}

// Targets returns the content types the event applies to.
func (e ContentInvalidatedEvent) Targets() []models.ContentType {
	if e.ContentType == "" {
		return models.ContentTypes
	}
	return []models.ContentType{e.ContentType}
}

// SerializeEvent 이벤트를 JSON으로 직렬화하고 타입 정보 반환
func SerializeEvent(event any) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case ContentInvalidatedEvent:
		eventType = e.Type
	case *ContentInvalidatedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, eventType, nil
}

// DeserializeEvent 이벤트 타입에 따라 적절한 구조체로 역직렬화
func DeserializeEvent(eventType EventType, data []byte) (any, error) {
	var event any

	switch eventType {
	case ContentInvalidated:
		event = &ContentInvalidatedEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
