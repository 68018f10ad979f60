package services

import (
	"context"
	"time"

	"pointsforest/internal/models"
)

const (
	REVEAL_PHASE_PULLING = "pulling"
	REVEAL_PHASE_REVEAL  = "reveal"
	REVEAL_PHASE_SUMMARY = "summary"
)

type RevealEvent struct {
	Phase      string              `json:"phase"`
	Index      int                 `json:"index,omitempty"`
	Item       *models.PulledItem  `json:"item,omitempty"`
	Items      []models.PulledItem `json:"items,omitempty"`
	TotalValue int64               `json:"total_value,omitempty"`
}

// RevealSequencer paces a finished pull into the animation timeline the
// client plays: one pulling phase, one reveal per item, one summary.
type RevealSequencer struct {
	PullingDelay time.Duration
	RevealDelay  time.Duration
	SummaryDelay time.Duration
}

func NewRevealSequencer() *RevealSequencer {
	return &RevealSequencer{
		PullingDelay: 2000 * time.Millisecond,
		RevealDelay:  600 * time.Millisecond,
		SummaryDelay: 1000 * time.Millisecond,
	}
}

// Run streams the sequence on the returned channel. The channel closes after
// the summary event or as soon as ctx is cancelled, whichever comes first,
// so an abandoned stream never leaks the goroutine.
func (sequencer *RevealSequencer) Run(ctx context.Context, pull *models.GachaPull) <-chan RevealEvent {
	events := make(chan RevealEvent)

	go func() {
		defer close(events)

		if !sequencer.emit(ctx, events, RevealEvent{Phase: REVEAL_PHASE_PULLING}, 0) {
			return
		}

		for i := range pull.Items {
			// the pulling phase holds until the first reveal
			delay := sequencer.RevealDelay
			if i == 0 {
				delay = sequencer.PullingDelay
			}

			item := pull.Items[i]
			if !sequencer.emit(ctx, events, RevealEvent{
				Phase: REVEAL_PHASE_REVEAL,
				Index: i,
				Item:  &item,
			}, delay) {
				return
			}
		}

		sequencer.emit(ctx, events, RevealEvent{
			Phase:      REVEAL_PHASE_SUMMARY,
			Items:      pull.Items,
			TotalValue: pull.TotalValue,
		}, sequencer.SummaryDelay)
	}()

	return events
}

// emit waits out the delay then sends the event, returning false when ctx
// cancels either step.
func (sequencer *RevealSequencer) emit(ctx context.Context, events chan<- RevealEvent, event RevealEvent, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}
