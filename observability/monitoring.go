package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats aggregates counters and process metrics for the
// /api/monitoring endpoint.
type MonitoringStats struct {
	MessagesProcessed    uint64 `json:"messages_processed"`
	RejectedValidation   uint64 `json:"rejected_validation"`
	RejectedInsufficient uint64 `json:"rejected_insufficient"`
	CensoredMessages     uint64 `json:"censored_messages"`
	Registrations        uint64 `json:"registrations"`
	Logins               uint64 `json:"logins"`

	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
}

// MonitoringManager tracks request outcomes with atomic counters; Snapshot is
// cheap enough to serve on every monitoring request.
type MonitoringManager struct {
	log *slog.Logger

	messagesProcessed    atomic.Uint64
	rejectedValidation   atomic.Uint64
	rejectedInsufficient atomic.Uint64
	censoredMessages     atomic.Uint64
	registrations        atomic.Uint64
	logins               atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrMessagesProcessed() { mm.messagesProcessed.Add(1) }
func (mm *MonitoringManager) IncrRejectedValidation() { mm.rejectedValidation.Add(1) }
func (mm *MonitoringManager) IncrRejectedInsufficient() {
	mm.rejectedInsufficient.Add(1)
}
func (mm *MonitoringManager) IncrCensoredMessages() { mm.censoredMessages.Add(1) }
func (mm *MonitoringManager) IncrRegistrations()    { mm.registrations.Add(1) }
func (mm *MonitoringManager) IncrLogins()           { mm.logins.Add(1) }

// Snapshot collects the counters together with Go runtime memory stats and
// this process's CPU/RAM usage.
func (mm *MonitoringManager) Snapshot() MonitoringStats {
	stats := MonitoringStats{
		MessagesProcessed:    mm.messagesProcessed.Load(),
		RejectedValidation:   mm.rejectedValidation.Load(),
		RejectedInsufficient: mm.rejectedInsufficient.Load(),
		CensoredMessages:     mm.censoredMessages.Load(),
		Registrations:        mm.registrations.Load(),
		Logins:               mm.logins.Load(),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		mm.log.Debug("Error while retrieving own process", "err", err)
		return stats
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if ram, err := p.MemoryPercent(); err == nil {
		stats.RAMPercent = float64(ram)
	}
	return stats
}
