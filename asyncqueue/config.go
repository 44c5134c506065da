package asyncqueue

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"
)

// SampleUnit defines what Config.MaxSamples counts.
type SampleUnit int

const (
	// SampleUnitFrame counts every non-signaling frame as 1.
	SampleUnitFrame = SampleUnit(iota)
	// SampleUnitSamples counts audio frames by their amount of samples
	// (other frames are still counted as 1).
	SampleUnitSamples
)

func (u SampleUnit) String() string {
	switch u {
	case SampleUnitFrame:
		return "frame"
	case SampleUnitSamples:
		return "samples"
	default:
		return fmt.Sprintf("unknown_sample_unit_%d", int(u))
	}
}

// Config defines when the queue is full; it is full as soon as any of the
// limits is reached.
type Config struct {
	// MaxBytes is the limit on the sum of Frame.ApproxSize of the queued frames.
	MaxBytes int64

	SampleUnit SampleUnit
	MaxSamples int64

	// MaxDuration is the limit on the PTS span between the oldest and the
	// newest queued frames (if both have PTS). Zero disables the limit.
	MaxDuration time.Duration
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamped returns the config with the limits brought into the valid ranges:
// a queue must be able to hold at least one frame.
func (cfg Config) Clamped() Config {
	cfg.MaxBytes = clamp(cfg.MaxBytes, 1, math.MaxInt64/2)
	cfg.MaxSamples = clamp(cfg.MaxSamples, 1, math.MaxInt64/2)
	if cfg.MaxDuration < 0 {
		cfg.MaxDuration = 0
	}
	return cfg
}

func (cfg Config) String() string {
	s := fmt.Sprintf(
		"max_bytes:%s max_samples:%d(%s)",
		humanize.IBytes(uint64(cfg.MaxBytes)),
		cfg.MaxSamples,
		cfg.SampleUnit,
	)
	if cfg.MaxDuration > 0 {
		s += fmt.Sprintf(" max_duration:%v", cfg.MaxDuration)
	}
	return s
}
