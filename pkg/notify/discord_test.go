package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Silent logger for tests
type TestLogger struct{}

func (l *TestLogger) Debugf(format string, args ...interface{}) {}
func (l *TestLogger) Infof(format string, args ...interface{})  {}
func (l *TestLogger) Warnf(format string, args ...interface{})  {}
func (l *TestLogger) Errorf(format string, args ...interface{}) {}

func activatedEvent() monitoring.TransitionEvent {
	return monitoring.TransitionEvent{
		Direction: monitoring.TransitionActivated,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Ports:     []int{8080},
	}
}

func TestDiscordNotifier_ActivatedPayload(t *testing.T) {
	var received discordPayload
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL, &TestLogger{})
	err := notifier.Notify(activatedEvent())
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	require.Len(t, received.Embeds, 1)

	embed := received.Embeds[0]
	assert.Contains(t, embed.Description, "Connected")
	assert.Contains(t, embed.Description, "8080")
	assert.Equal(t, colorGreen, embed.Color)
	assert.Equal(t, "2024-06-01T12:00:00Z", embed.Timestamp)
}

func TestDiscordNotifier_DeactivatedPayload(t *testing.T) {
	var received discordPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	event := monitoring.TransitionEvent{
		Direction: monitoring.TransitionDeactivated,
		Timestamp: time.Now(),
		Ports:     []int{8080},
	}

	notifier := NewDiscordNotifier(server.URL, &TestLogger{})
	require.NoError(t, notifier.Notify(event))

	require.Len(t, received.Embeds, 1)
	assert.Contains(t, received.Embeds[0].Description, "Disconnected")
	assert.Equal(t, colorRed, received.Embeds[0].Color)
}

func TestDiscordNotifier_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL, &TestLogger{})
	err := notifier.Notify(activatedEvent())

	require.Error(t, err)
	assert.True(t, errors.IsNotificationError(err))
}

func TestDiscordNotifier_TransportFailure(t *testing.T) {
	// Closed server, connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	notifier := NewDiscordNotifier(server.URL, &TestLogger{})
	err := notifier.Notify(activatedEvent())

	require.Error(t, err)
	assert.True(t, errors.IsNotificationError(err))
}
