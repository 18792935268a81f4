package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klokku/kladd/internal/test_utils"
	"github.com/klokku/kladd/internal/utils"
	"github.com/klokku/kladd/pkg/timerange"
)

func testDraft(t *testing.T, id string) *Draft {
	t.Helper()
	locale := test_utils.TestLocale(t)
	start := timerange.NewDate(2024, time.April, 10)
	end := timerange.NewDate(2024, time.April, 10)
	return &Draft{ID: id, Range: timerange.New(start, end, locale)}
}

func TestSessionStore(t *testing.T) {
	newStore := func(t *testing.T) (*SessionStore, *utils.MockClock) {
		clock := &utils.MockClock{FixedNow: time.Date(2024, time.April, 10, 9, 0, 0, 0, time.UTC)}
		return NewSessionStore(clock, 30*time.Minute), clock
	}

	t.Run("should hand back an added draft", func(t *testing.T) {
		store, _ := newStore(t)
		store.Add(testDraft(t, "a"))

		d, ok := store.Get("a")

		require.True(t, ok)
		assert.Equal(t, "a", d.ID)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("should not know a removed draft", func(t *testing.T) {
		store, _ := newStore(t)
		store.Add(testDraft(t, "a"))

		_, ok := store.Remove("a")
		require.True(t, ok)

		_, ok = store.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("should sweep only sessions idle past the ttl", func(t *testing.T) {
		store, clock := newStore(t)
		store.Add(testDraft(t, "old"))
		clock.Advance(20 * time.Minute)
		store.Add(testDraft(t, "fresh"))
		clock.Advance(15 * time.Minute)

		expired := store.Sweep()

		require.Len(t, expired, 1)
		assert.Equal(t, "old", expired[0].ID)
		_, ok := store.Get("fresh")
		assert.True(t, ok)
	})

	t.Run("should keep a session alive that is being read", func(t *testing.T) {
		store, clock := newStore(t)
		store.Add(testDraft(t, "a"))

		clock.Advance(25 * time.Minute)
		_, ok := store.Get("a")
		require.True(t, ok)
		clock.Advance(25 * time.Minute)

		assert.Empty(t, store.Sweep())
		_, ok = store.Get("a")
		assert.True(t, ok)
	})
}
