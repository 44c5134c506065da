package types

import (
	"go.uber.org/atomic"
)

type StatisticsItem struct {
	Count uint64 `json:",omitempty"`
	Bytes uint64 `json:",omitempty"`
}

type StatisticsSubSection struct {
	Video     StatisticsItem `json:",omitempty"`
	Audio     StatisticsItem `json:",omitempty"`
	Packet    StatisticsItem `json:",omitempty"`
	Signaling StatisticsItem `json:",omitempty"`
	Other     StatisticsItem `json:",omitempty"`
}

func (s StatisticsSubSection) TotalCount() uint64 {
	return s.Video.Count + s.Audio.Count + s.Packet.Count + s.Signaling.Count + s.Other.Count
}

// Statistics is a snapshot of Counters.
type Statistics struct {
	// Received are the frames a filter read from its inputs.
	Received StatisticsSubSection
	// Sent are the frames a filter wrote to its outputs.
	Sent StatisticsSubSection
	// Missed are the frames dropped because nobody could accept them.
	Missed StatisticsSubSection
}

type CountersItem struct {
	Count atomic.Uint64
	Bytes atomic.Uint64
}

func (c *CountersItem) Increment(size uint64) {
	c.Count.Inc()
	c.Bytes.Add(size)
}

func (c *CountersItem) ToStats() StatisticsItem {
	return StatisticsItem{
		Count: c.Count.Load(),
		Bytes: c.Bytes.Load(),
	}
}

type CountersSubSection struct {
	Video     CountersItem
	Audio     CountersItem
	Packet    CountersItem
	Signaling CountersItem
	Other     CountersItem
}

func (s *CountersSubSection) Increment(kind FrameKind, size uint64) {
	switch {
	case kind == FrameKindVideo:
		s.Video.Increment(size)
	case kind == FrameKindAudio:
		s.Audio.Increment(size)
	case kind == FrameKindPacket:
		s.Packet.Increment(size)
	case kind.IsSignaling():
		s.Signaling.Increment(size)
	default:
		s.Other.Increment(size)
	}
}

func (s *CountersSubSection) ToStats() StatisticsSubSection {
	return StatisticsSubSection{
		Video:     s.Video.ToStats(),
		Audio:     s.Audio.ToStats(),
		Packet:    s.Packet.ToStats(),
		Signaling: s.Signaling.ToStats(),
		Other:     s.Other.ToStats(),
	}
}

// Counters are the live per-filter frame counters.
type Counters struct {
	Received CountersSubSection
	Sent     CountersSubSection
	Missed   CountersSubSection
}

func (c *Counters) ToStats() Statistics {
	return Statistics{
		Received: c.Received.ToStats(),
		Sent:     c.Sent.ToStats(),
		Missed:   c.Missed.ToStats(),
	}
}
