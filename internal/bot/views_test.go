package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gooseband/relaybot/internal/model"
	"github.com/gooseband/relaybot/internal/monitor"
)

func TestStatusText(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no checks yet", func(t *testing.T) {
		got := statusText(model.Snapshot{SourceName: "Instagram"}, now)
		assert.Equal(t, "Instagram: no checks performed yet", got)
	})

	t.Run("healthy", func(t *testing.T) {
		snap := model.Snapshot{
			SourceName: "Instagram",
			LastCheck:  now.Add(-90 * time.Second),
			Relayed:    3,
		}
		got := statusText(snap, now)
		assert.Equal(t, "Instagram: last check 1m30s ago, 3 posts relayed, no errors", got)
	})

	t.Run("with error", func(t *testing.T) {
		snap := model.Snapshot{
			SourceName: "BlueSky",
			LastCheck:  now.Add(-time.Minute),
			LastError:  "connection refused",
		}
		got := statusText(snap, now)
		assert.Equal(t, "BlueSky: last check 1m0s ago, 0 posts relayed, last error: connection refused", got)
	})
}

func TestCheckText(t *testing.T) {
	assert.Equal(t, "Instagram: new post relayed", checkText("Instagram", monitor.Relayed, nil))
	assert.Equal(t, "Instagram: no new posts", checkText("Instagram", monitor.Skipped, nil))
	assert.Equal(t,
		"BlueSky: check failed: session expired",
		checkText("BlueSky", monitor.Failed, errors.New("session expired")),
	)
}
