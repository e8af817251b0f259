// Package quota observes storage usage and classifies how close it is to the limit.
//
// The host capability is abstracted as an Estimator. A Monitor turns a raw
// estimate into an Info with pressure flags, and the pure helpers FormatSize
// and Advisory render it for people.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// Pressure thresholds, in percent of quota.
const (
	LowPercent      = 80
	CriticalPercent = 95
)

// ErrUnavailable means the host cannot report storage usage.
// It is an informational state, not a failure.
var ErrUnavailable = errors.New("storage estimate unavailable")

// Estimate is the raw usage report from the host.
type Estimate struct {
	UsedBytes  uint64
	TotalBytes uint64
}

// Estimator queries the host for storage usage.
type Estimator interface {
	Estimate(ctx context.Context) (Estimate, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context) (Estimate, error)

// Estimate calls f.
func (f EstimatorFunc) Estimate(ctx context.Context) (Estimate, error) {
	return f(ctx)
}

// Info is a classified storage estimate.
type Info struct {
	Usage      uint64  `json:"usage"`
	Quota      uint64  `json:"quota"`
	UsageMB    float64 `json:"usage_mb"`
	QuotaMB    float64 `json:"quota_mb"`
	Percentage float64 `json:"percentage"`
	IsLow      bool    `json:"is_low"`
	IsCritical bool    `json:"is_critical"`
}

// Classify computes percentage and pressure flags for an estimate.
// Percentage is 0 when the quota is 0.
func Classify(e Estimate) Info {
	var pct float64
	if e.TotalBytes > 0 {
		pct = float64(e.UsedBytes) / float64(e.TotalBytes) * 100
	}
	return Info{
		Usage:      e.UsedBytes,
		Quota:      e.TotalBytes,
		UsageMB:    float64(e.UsedBytes) / (1024 * 1024),
		QuotaMB:    float64(e.TotalBytes) / (1024 * 1024),
		Percentage: pct,
		IsLow:      pct > LowPercent,
		IsCritical: pct > CriticalPercent,
	}
}

// Monitor checks storage pressure through an Estimator.
type Monitor struct {
	estimator Estimator
	logger    *slog.Logger
}

// NewMonitor creates a monitor. A nil logger uses slog.Default().
func NewMonitor(e Estimator, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{estimator: e, logger: logger}
}

// Check returns the current storage info. The boolean is false when the host
// cannot provide an estimate; callers should degrade gracefully, not fail.
func (m *Monitor) Check(ctx context.Context) (Info, bool) {
	if m.estimator == nil {
		m.logger.Warn("storage estimate unavailable", "reason", "no estimator")
		return Info{}, false
	}

	est, err := m.estimator.Estimate(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			m.logger.Warn("storage estimate unavailable")
		} else {
			m.logger.Error("storage estimate failed", "error", err)
		}
		return Info{}, false
	}

	info := Classify(est)
	m.logger.Debug("storage estimated",
		"usage", info.Usage,
		"quota", info.Quota,
		"percentage", info.Percentage,
	)
	return info, true
}

// Level is the advisory tier for an Info.
type Level int

const (
	LevelHealthy Level = iota
	LevelLow
	LevelCritical
)

// String returns the tier name.
func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelLow:
		return "low"
	default:
		return "healthy"
	}
}

// Severity returns the advisory tier of info.
func Severity(info Info) Level {
	switch {
	case info.IsCritical:
		return LevelCritical
	case info.IsLow:
		return LevelLow
	default:
		return LevelHealthy
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in base-1024 units rounded to two decimals,
// e.g. "0 Bytes", "1.5 KB", "250 MB". Values beyond TB stay in TB.
func FormatSize(bytes uint64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	i := 0
	v := float64(bytes)
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// Advisory returns the user-facing message for info's tier. Every message
// includes the percentage and the formatted usage and quota.
func Advisory(info Info) string {
	usage := fmt.Sprintf("%.1f%% (%s / %s)", info.Percentage, FormatSize(info.Usage), FormatSize(info.Quota))

	switch Severity(info) {
	case LevelCritical:
		return "Storage is critically low! " + usage + " used.\n\n" +
			"Suggestions:\n" +
			"1. Export a backup, then delete places you no longer need\n" +
			"2. Remove menu images you do not need"
	case LevelLow:
		return "Storage is running low: " + usage + " used.\n\n" +
			"Consider cleaning up data you no longer need."
	default:
		return "Storage is healthy: " + usage + " used."
	}
}
