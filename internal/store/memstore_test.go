package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/room"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	r := &room.Room{ID: "ABC", Variant: "tictactoe"}
	s.Save(r)

	got, ok := s.Get("tictactoe", "ABC")
	require.True(t, ok)
	assert.Same(t, r, got)

	// Lookups normalize the room id.
	got, ok = s.Get("tictactoe", "abc")
	require.True(t, ok)
	assert.Same(t, r, got)

	s.Delete("tictactoe", "abc")
	_, ok = s.Get("tictactoe", "ABC")
	assert.False(t, ok)
}

func TestMemoryStoreVariantIsolation(t *testing.T) {
	s := NewMemoryStore()
	s.Save(&room.Room{ID: "ABC", Variant: "tictactoe"})
	s.Save(&room.Room{ID: "ABC", Variant: "connect4"})
	s.Save(&room.Room{ID: "DEF", Variant: "connect4"})

	assert.Equal(t, 3, s.Count())

	ttt, ok := s.Get("tictactoe", "ABC")
	require.True(t, ok)
	assert.Equal(t, "tictactoe", ttt.Variant)

	c4 := s.ByVariant("connect4")
	assert.Len(t, c4, 2)
	for _, r := range c4 {
		assert.Equal(t, "connect4", r.Variant)
	}

	s.Delete("connect4", "ABC")
	_, ok = s.Get("tictactoe", "ABC")
	assert.True(t, ok)
	assert.Equal(t, 2, s.Count())
}
