package observability

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Snapshot(t *testing.T) {
	t.Run("should report incremented counters", func(t *testing.T) {
		req := require.New(t)

		mm := NewMonitoringManager(slog.Default())
		mm.IncrMessagesProcessed()
		mm.IncrMessagesProcessed()
		mm.IncrRejectedValidation()
		mm.IncrRejectedInsufficient()
		mm.IncrCensoredMessages()
		mm.IncrRegistrations()
		mm.IncrLogins()

		stats := mm.Snapshot()

		req.EqualValues(2, stats.MessagesProcessed)
		req.EqualValues(1, stats.RejectedValidation)
		req.EqualValues(1, stats.RejectedInsufficient)
		req.EqualValues(1, stats.CensoredMessages)
		req.EqualValues(1, stats.Registrations)
		req.EqualValues(1, stats.Logins)
	})

	t.Run("should count correctly under concurrent increments", func(t *testing.T) {
		req := require.New(t)

		mm := NewMonitoringManager(slog.Default())

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					mm.IncrMessagesProcessed()
				}
			}()
		}
		wg.Wait()

		req.EqualValues(5000, mm.Snapshot().MessagesProcessed)
	})
}
