package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

func TestStateActiveItem(t *testing.T) {
	s := NewState("user-1", "topic-1")

	_, ok := s.ActiveItem()
	assert.False(t, ok)

	s.SetActiveItem(types.Item{ItemID: "q-1", PromptContent: "?"})
	item, ok := s.ActiveItem()
	require.True(t, ok)
	assert.Equal(t, "q-1", item.ItemID)

	s.ClearActiveItem()
	_, ok = s.ActiveItem()
	assert.False(t, ok)
}

func TestStateHistoryAppendOnly(t *testing.T) {
	s := NewState("u", "t")
	s.Append(types.NewTurn(types.RoleSystem, "seed"))
	s.Append(types.NewTurn(types.RoleUser, "hello"))
	s.Append(types.NewTurn(types.RoleAssistant, "hi"))

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, "seed", history[0].Text)
	assert.Equal(t, "hello", history[1].Text)
	assert.Equal(t, "hi", history[2].Text)
}

func TestStateHistorySnapshotIsolation(t *testing.T) {
	s := NewState("u", "t")
	s.Append(types.NewTurn(types.RoleUser, "one"))

	snap := s.History()
	s.Append(types.NewTurn(types.RoleUser, "two"))

	assert.Len(t, snap, 1, "snapshots must not observe later appends")
	assert.Len(t, s.History(), 2)

	snap[0].Text = "mutated"
	assert.Equal(t, "one", s.History()[0].Text, "snapshots must not alias internal storage")
}

func TestStateConcurrentAppends(t *testing.T) {
	s := NewState("u", "t")

	const writers = 8
	const perWriter = 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(types.NewTurn(types.RoleUser, fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	history := s.History()
	require.Len(t, history, writers*perWriter)

	seen := make(map[string]int, len(history))
	for _, turn := range history {
		seen[turn.Text]++
	}
	for text, n := range seen {
		assert.Equal(t, 1, n, "turn %q appended more than once", text)
	}
}
