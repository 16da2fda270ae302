package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DavidPARK0417/draiger-sub002/cmd/internal/eventbus"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/events"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

var (
	flagReason       string
	flagEnsureTopics bool
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Publish a content.invalidate event consumed by every running API instance",
	RunE:  runInvalidate,
}

func init() {
	invalidateCmd.Flags().StringVar(&flagReason, "reason", "manual", "reason recorded in the event")
	invalidateCmd.Flags().BoolVar(&flagEnsureTopics, "ensure-topics", false, "create the topic and its DLQ first")
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	types, err := contentTypes(flagType)
	if err != nil {
		return err
	}
	brokers := strings.TrimSpace(os.Getenv(config.EnvKafkaBrokers))
	if brokers == "" {
		return errors.New(config.EnvKafkaBrokers + " is not set")
	}

	cfg := config.GetConfig()
	topic := eventbus.NewTopic(cfg.Events.Topic)
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if flagEnsureTopics {
		if err := eventbus.EnsureTopics(ctx, brokers, topic, 1); err != nil {
			return err
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		return err
	}
	defer bus.Close()

	// 모든 타입이면 이벤트 하나로 보낸다.
	target := models.ContentType("")
	if len(types) == 1 {
		target = types[0]
	}
	typed := events.NewContentInvalidated("cachectl", target, flagReason)
	evt, err := eventbus.NewEvent(typed.ID, typed)
	if err != nil {
		return err
	}
	if err := bus.Publish(ctx, topic.Base(), evt); err != nil {
		return fmt.Errorf("publish to %s: %w", topic.Base(), err)
	}

	out := cmd.OutOrStdout()
	printLine(out, "topic", topic.Base())
	printLine(out, "event", typed.ID)
	for _, ct := range typed.Targets() {
		printLine(out, "invalidated", okStyle.Render(string(ct)))
	}
	return nil
}
