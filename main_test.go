package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/handsomefox/ridit/downloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatProgress(t *testing.T) {
	t.Parallel()
	got := formatProgress(progressFormat, downloader.Progress{Queued: 4, Saved: 3, Skipped: 2, Failed: 1})
	assert.Equal(t, "Download status: Queued=4; Saved=3; Skipped=2; Failed=1", got)
}

func TestPauseNotTerminal(t *testing.T) {
	t.Parallel()
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer f.Close()

	// Returns immediately instead of waiting for a key.
	pause(f)
}
