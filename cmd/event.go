package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rizkypratama/crm-management/internal/core/events"
	"github.com/rizkypratama/crm-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
}

// knownEventTypes are the access lifecycle events the server publishes.
var knownEventTypes = []string{
	events.AccessRequestSent,
	events.AccessRequestAccepted,
	events.AccessRequestRejected,
	events.AccessRevoked,
	events.PermissionUpdated,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a synthetic access event to a local bus",
	Long:  "Publish a synthetic event and echo it through a debug subscriber. Useful for checking subscriber wiring and log output.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishDebugEvent(args[0])
	},
}

var eventData string

func publishDebugEvent(eventType string) error {
	known := false
	for _, t := range knownEventTypes {
		if t == eventType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown event type %q, expected one of %v", eventType, knownEventTypes)
	}

	lg := logger.L()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("debug subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	evt := events.BaseEvent{
		ID:        fmt.Sprintf("debug-%d", time.Now().UnixNano()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli",
		},
	}

	// PublishSync so the subscriber runs before the process exits.
	return bus.PublishSync(context.Background(), evt)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "debug message", "payload message attached to the event")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
