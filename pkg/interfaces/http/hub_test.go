package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/factorysim/pkg/application/dto"
	fixtures "github.com/vsinha/factorysim/pkg/infrastructure/testing"
	"github.com/vsinha/factorysim/pkg/logger"
)

func TestHub_DayAdvancedNeverBlocks(t *testing.T) {
	hub := NewHub(logger.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.DayAdvanced(&dto.DayResult{PreviousDate: fixtures.Day1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("DayAdvanced blocked without a running hub")
	}
	assert.Len(t, hub.broadcast, cap(hub.broadcast))
}

func TestHub_QueuesEncodedResult(t *testing.T) {
	hub := NewHub(logger.Nop())
	hub.DayAdvanced(&dto.DayResult{PreviousDate: fixtures.Day1, NewDate: fixtures.Day1.AddDate(0, 0, 1), TotalStock: 310})

	message := <-hub.broadcast
	var decoded dto.DayResult
	require.NoError(t, json.Unmarshal(message, &decoded))
	assert.EqualValues(t, 310, decoded.TotalStock)
	assert.True(t, decoded.NewDate.Equal(fixtures.Day1.AddDate(0, 0, 1)))
}

func TestHub_RunStopsWithContext(t *testing.T) {
	hub := NewHub(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	hub.DayAdvanced(&dto.DayResult{})
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.Clients())
}
