package services

import (
	"context"
	"fmt"

	"github.com/DavidPARK0417/draiger-sub002/cmd/internal/eventbus"
	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/events"
)

// HandleInvalidation drops cached results named by a content.invalidate event.
func (s *ContentService) HandleInvalidation(ctx context.Context, evt eventbus.Event) error {
	typed, err := evt.Decode()
	if err != nil {
		return err
	}
	inv, ok := typed.(*events.ContentInvalidatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", typed)
	}
	for _, ct := range inv.Targets() {
		if err := validType(ct); err != nil {
			return err
		}
		removed := s.Invalidate(ctx, ct)
		logger.InfoWithFields("cache invalidated", logger.Fields{
			"event_id":     inv.ID,
			"source":       inv.Source,
			"content_type": string(ct),
			"reason":       inv.Reason,
			"removed":      removed,
		})
	}
	return nil
}
