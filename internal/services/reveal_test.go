package services

import (
	"context"
	"testing"
	"time"

	"pointsforest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastSequencer() *RevealSequencer {
	return &RevealSequencer{
		PullingDelay: time.Millisecond,
		RevealDelay:  time.Millisecond,
		SummaryDelay: time.Millisecond,
	}
}

func TestRevealSequencerOrder(t *testing.T) {
	pull := &models.GachaPull{
		ID:         "p1",
		TotalValue: 60,
		Items: []models.PulledItem{
			{ItemID: 1, Name: "Pebble Snail", Rarity: models.RARITY_COMMON, Value: 20},
			{ItemID: 2, Name: "Fern Fox", Rarity: models.RARITY_UNCOMMON, Value: 40},
		},
	}

	var events []RevealEvent
	for event := range fastSequencer().Run(context.Background(), pull) {
		events = append(events, event)
	}

	require.Len(t, events, 4)
	assert.Equal(t, REVEAL_PHASE_PULLING, events[0].Phase)

	assert.Equal(t, REVEAL_PHASE_REVEAL, events[1].Phase)
	assert.Equal(t, 0, events[1].Index)
	assert.Equal(t, "Pebble Snail", events[1].Item.Name)

	assert.Equal(t, REVEAL_PHASE_REVEAL, events[2].Phase)
	assert.Equal(t, 1, events[2].Index)
	assert.Equal(t, "Fern Fox", events[2].Item.Name)

	assert.Equal(t, REVEAL_PHASE_SUMMARY, events[3].Phase)
	assert.Equal(t, int64(60), events[3].TotalValue)
	assert.Len(t, events[3].Items, 2)
}

func TestRevealSequencerSummaryOnce(t *testing.T) {
	pull := &models.GachaPull{
		ID:    "p2",
		Items: []models.PulledItem{{ItemID: 1, Name: "Moss Beetle"}},
	}

	summaries := 0
	for event := range fastSequencer().Run(context.Background(), pull) {
		if event.Phase == REVEAL_PHASE_SUMMARY {
			summaries++
		}
	}

	assert.Equal(t, 1, summaries)
}

func TestRevealSequencerCancel(t *testing.T) {
	pull := &models.GachaPull{ID: "p3"}
	for i := 0; i < 100; i++ {
		pull.Items = append(pull.Items, models.PulledItem{ItemID: int64(i)})
	}

	sequencer := &RevealSequencer{
		PullingDelay: time.Millisecond,
		RevealDelay:  10 * time.Millisecond,
		SummaryDelay: time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := sequencer.Run(ctx, pull)

	<-events // pulling
	<-events // first reveal
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // closed without draining all 100 reveals
			}
		case <-deadline:
			t.Fatal("sequencer did not stop after cancellation")
		}
	}
}
