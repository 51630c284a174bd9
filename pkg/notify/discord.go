package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/logging"
	"github.com/core-tools/hsu-sockswatch/pkg/monitoring"
)

// Notifier delivers one transition event to an external endpoint.
// At most one delivery attempt per transition, retrying is the business of
// the next edge event.
type Notifier interface {
	Notify(event monitoring.TransitionEvent) error
}

const (
	defaultTimeout = 10 * time.Second

	colorGreen = 0x00ff00
	colorRed   = 0xff0000
)

// Discord-style incoming webhook body
type discordEmbed struct {
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordNotifier struct {
	webhookURL string
	client     *http.Client
	logger     logging.Logger
}

// NewDiscordNotifier creates a webhook notifier with a short request timeout
// so that a hung endpoint cannot stall the polling loop.
func NewDiscordNotifier(webhookURL string, logger logging.Logger) Notifier {
	return &discordNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

func (n *discordNotifier) Notify(event monitoring.TransitionEvent) error {
	message, color := formatTransition(event)

	payload := discordPayload{
		Embeds: []discordEmbed{
			{
				Description: message,
				Color:       color,
				Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewInternalError("failed to encode webhook payload", err)
	}

	n.logger.Debugf("Posting webhook notification: %s", message)

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.NewNotificationError("webhook request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewNotificationError(
			fmt.Sprintf("webhook returned status %d", resp.StatusCode), nil,
		).WithContext("status", resp.StatusCode)
	}

	return nil
}

func formatTransition(event monitoring.TransitionEvent) (string, int) {
	if event.Direction == monitoring.TransitionActivated {
		return fmt.Sprintf("🟢 **Connected** to Target Server (Port: %v)", event.Ports), colorGreen
	}
	return "🔴 **Disconnected** from Target Server", colorRed
}
