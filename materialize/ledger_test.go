package materialize

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/gitfarm/errors"
)

func TestLedger_RecordAndList(t *testing.T) {
	fs := memfs.New()
	l := newLedger(fs, workingRoot, newLocker(false))
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, l.record(ctx, Checkout{Namespace: "org", Name: "b", Commit: "1", CreatedAt: t0, LastAccess: t0}))
	require.NoError(t, l.record(ctx, Checkout{Namespace: "org", Name: "a", Commit: "1", CreatedAt: t0, LastAccess: t0}))

	t1 := t0.Add(time.Hour)
	require.NoError(t, l.record(ctx, Checkout{Namespace: "org", Name: "b", Commit: "2", CreatedAt: t1, LastAccess: t1}))

	entries, err := l.list()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "org/a", entries[0].Locator().String())
	assert.Equal(t, "org/b", entries[1].Locator().String())

	assert.Equal(t, "2", entries[1].Commit)
	assert.True(t, entries[1].CreatedAt.Equal(t0), "re-recording keeps the creation time")
	assert.True(t, entries[1].LastAccess.Equal(t1))

	got, ok, err := l.get(Locator{Namespace: "org", Name: "a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", got.Commit)

	_, ok, err = l.get(Locator{Namespace: "org", Name: "zzz"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_Remove(t *testing.T) {
	l := newLedger(memfs.New(), workingRoot, newLocker(false))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, l.record(ctx, Checkout{Namespace: "org", Name: name}))
	}
	require.NoError(t, l.remove(ctx, "org/a", "org/c", "org/missing"))

	entries, err := l.list()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Name)
}

func TestLedger_EmptyWhenMissing(t *testing.T) {
	l := newLedger(memfs.New(), workingRoot, newLocker(false))

	entries, err := l.list()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedger_Persisted(t *testing.T) {
	fs := memfs.New()
	ctx := context.Background()

	require.NoError(t, newLedger(fs, workingRoot, newLocker(false)).record(ctx, Checkout{Namespace: "org", Name: "app"}))

	// A second instance, as another worker process would have, sees the record.
	entries, err := newLedger(fs, workingRoot, newLocker(false)).list()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	files, err := fs.ReadDir(workingRoot + "/.gitfarm")
	require.NoError(t, err)
	require.Len(t, files, 1, "no temporary files are left behind")
	assert.Equal(t, "ledger.json", files[0].Name())
}

func TestLedger_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"unknown version", `{"version":"99","checkouts":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memfs.New()
			require.NoError(t, util.WriteFile(fs, workingRoot+"/.gitfarm/ledger.json", []byte(tt.content), 0o644))
			l := newLedger(fs, workingRoot, newLocker(false))

			_, err := l.list()
			assert.Equal(t, errors.CodeIO, errors.GetCode(err))

			err = l.record(context.Background(), Checkout{Namespace: "org", Name: "app"})
			assert.Equal(t, errors.CodeIO, errors.GetCode(err))
		})
	}
}
