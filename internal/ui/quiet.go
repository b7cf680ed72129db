package ui

import (
	"github.com/bamsammich/drivesync/internal/event"
	"github.com/bamsammich/drivesync/internal/stats"
)

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan event.Event) error {
	// Counters are written by the engine directly; presenters only read
	// from the collector, never write.
	//nolint:revive // empty-block: intentionally draining event channel
	for range events {
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
