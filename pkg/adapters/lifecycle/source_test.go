package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/receipt/pkg/adapters/lifecycle"
	"github.com/aretw0/receipt/pkg/core"
)

func TestSource(t *testing.T) {
	t.Run("Forwards Until Input Closes", func(t *testing.T) {
		in := make(chan core.Event, 2)
		in <- core.Event{Type: core.EventModify, ID: "receipt.json"}
		in <- core.Event{Type: core.EventCreate, ID: "receipt.json"}
		close(in)

		src := lifecycle.NewSource(in)
		require.NoError(t, src.Start(context.Background()))

		var got []string
		for e := range src.Events() {
			got = append(got, e.String())
		}
		require.Len(t, got, 2)
		assert.Equal(t, core.Event{Type: core.EventModify, ID: "receipt.json"}.String(), got[0])
	})

	t.Run("Closes On Cancel", func(t *testing.T) {
		in := make(chan core.Event)
		ctx, cancel := context.WithCancel(context.Background())

		src := lifecycle.NewSource(in)
		require.NoError(t, src.Start(ctx))
		require.NoError(t, src.Start(ctx), "second start is a no-op")
		cancel()

		select {
		case _, ok := <-src.Events():
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("events not closed after cancel")
		}
	})
}
