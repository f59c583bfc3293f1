package materialize

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// materializeAt checks out org/<name> at the harness clock's current time.
func (h *harness) materializeAt(name string, at time.Time) string {
	h.t.Helper()
	h.now = at
	h.mkdir(sharedRoot + "/org/" + name + ".git")
	path, err := h.m.Materialize(context.Background(), "https://git.example.com/org/"+name+".git", "abc123")
	require.NoError(h.t, err)
	return path
}

func (h *harness) fill(path string, size int) {
	h.t.Helper()
	require.NoError(h.t, util.WriteFile(h.fs, path+"/blob", []byte(strings.Repeat("x", size)), 0o644))
}

func names(entries []Checkout) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestPrune_OlderThan(t *testing.T) {
	h := newHarness(t, testSettings())
	base := h.now

	old := h.materializeAt("old", base)
	fresh := h.materializeAt("fresh", base.Add(90*time.Minute))
	h.now = base.Add(2 * time.Hour)

	removed, err := h.m.Prune(context.Background(), PruneOlderThan(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, names(removed))

	assert.False(t, h.exists(old))
	assert.True(t, h.exists(fresh))
	assert.True(t, h.exists(sharedRoot+"/org/old.git"), "the shared cache is never pruned")

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names(entries))
}

func TestPrune_ToSize(t *testing.T) {
	h := newHarness(t, testSettings())
	base := h.now

	a := h.materializeAt("a", base)
	b := h.materializeAt("b", base.Add(time.Minute))
	c := h.materializeAt("c", base.Add(2*time.Minute))
	h.fill(a, 100)
	h.fill(b, 100)
	h.fill(c, 100)

	removed, err := h.m.Prune(context.Background(), PruneToSize(150))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names(removed), "least recently used go first")
	assert.True(t, h.exists(c))

	removed, err = h.m.Prune(context.Background(), PruneToSize(150))
	require.NoError(t, err)
	assert.Empty(t, removed, "already under the limit")
}

func TestPrune_Combined(t *testing.T) {
	h := newHarness(t, testSettings())
	base := h.now

	h.materializeAt("stale", base)
	big := h.materializeAt("big", base.Add(3*time.Hour))
	small := h.materializeAt("small", base.Add(4*time.Hour))
	h.fill(big, 500)
	h.fill(small, 10)
	h.now = base.Add(5 * time.Hour)

	removed, err := h.m.Prune(context.Background(), PruneOlderThan(3*time.Hour), PruneToSize(100))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"stale", "big"}, names(removed))
}

func TestPrune_DropsVanishedCheckouts(t *testing.T) {
	h := newHarness(t, testSettings())
	path := h.materializeAt("gone", h.now)
	require.NoError(t, util.RemoveAll(h.fs, path))

	removed, err := h.m.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, names(removed))

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrune_Nothing(t *testing.T) {
	h := newHarness(t, testSettings())
	h.materializeAt("app", h.now)

	removed, err := h.m.Prune(context.Background(), PruneOlderThan(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, removed)
}

// refreshingStrategy selects every entry, but first materializes it again
// the way a concurrent build would between selection and removal.
type refreshingStrategy struct {
	h    *harness
	at   time.Time
	done bool
}

func (s *refreshingStrategy) ShouldPrune(e Checkout, _ time.Time) bool {
	if !s.done {
		s.done = true
		s.h.now = s.at
		_, err := s.h.m.Materialize(context.Background(), e.Repository, "abc123")
		require.NoError(s.h.t, err)
	}
	return true
}

func TestPrune_KeepsCheckoutRefreshedAfterSelection(t *testing.T) {
	h := newHarness(t, testSettings())
	path := h.materializeAt("app", h.now)

	removed, err := h.m.Prune(context.Background(), &refreshingStrategy{h: h, at: h.now.Add(time.Minute)})
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.True(t, h.exists(path))

	entries, err := h.m.Checkouts()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, h.now, entries[0].LastAccess)
}
