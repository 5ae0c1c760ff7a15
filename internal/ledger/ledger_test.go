// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/asset-converter/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

var xpm = types.Profile{Name: "xpm", SourceRoot: "images", DestRoot: "compiled-images"}

func TestRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.BeginRun(ctx, xpm)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, first, types.RunSummary{Converted: 3, Unmatched: 1}, nil))

	second, err := s.BeginRun(ctx, xpm)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, second, types.RunSummary{Converted: 1}, errors.New("loading b.png: corrupt")))

	third, err := s.BeginRun(ctx, types.Profile{Name: "png", SourceRoot: "src/images", DestRoot: "Images"})
	require.NoError(t, err)

	runs, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, third, runs[0].ID)
	assert.Equal(t, types.RunRunning, runs[0].Status)
	assert.True(t, runs[0].FinishedAt.IsZero())

	assert.Equal(t, second, runs[1].ID)
	assert.Equal(t, types.RunFailed, runs[1].Status)
	assert.Equal(t, "loading b.png: corrupt", runs[1].Error)

	assert.Equal(t, first, runs[2].ID)
	assert.Equal(t, types.RunCompleted, runs[2].Status)
	assert.Equal(t, types.RunSummary{Converted: 3, Unmatched: 1}, runs[2].Summary)
	assert.Equal(t, "compiled-images", runs[2].DestRoot)
	assert.True(t, runs[2].FinishedAt.After(runs[2].StartedAt))

	limited, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFinishRun_Unknown(t *testing.T) {
	s := testStore(t)
	err := s.FinishRun(context.Background(), "missing", types.RunSummary{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestTracker(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	tr := s.Tracker("xpm")

	job := types.ConversionJob{SourcePath: "images/a.png", DestinationPath: "compiled-images/a.xpm"}
	mod := time.Date(2026, 2, 1, 8, 30, 0, 123, time.Local)

	ok, err := tr.Unchanged(ctx, job, mod)
	require.NoError(t, err)
	assert.False(t, ok, "unknown job")

	require.NoError(t, tr.Record(ctx, job, mod))

	ok, err = tr.Unchanged(ctx, job, mod)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.Unchanged(ctx, job, mod.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "source changed")

	moved := job
	moved.DestinationPath = "elsewhere/a.xpm"
	ok, err = tr.Unchanged(ctx, moved, mod)
	require.NoError(t, err)
	assert.False(t, ok, "destination changed")

	ok, err = s.Tracker("png").Unchanged(ctx, job, mod)
	require.NoError(t, err)
	assert.False(t, ok, "other profile")

	// Recording again replaces the previous revision.
	require.NoError(t, tr.Record(ctx, job, mod.Add(time.Hour)))
	jobs, err := s.Jobs(ctx, "xpm")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].SourceModTime.Equal(mod.Add(time.Hour)))
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mod := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Tracker("xpm").Record(ctx,
		types.ConversionJob{SourcePath: "images/b.xcf", DestinationPath: "compiled-images/b.xpm"}, mod))
	require.NoError(t, s.Tracker("xpm").Record(ctx,
		types.ConversionJob{SourcePath: "images/a.png", DestinationPath: "compiled-images/a.xpm"}, mod))
	require.NoError(t, s.Tracker("png").Record(ctx,
		types.ConversionJob{SourcePath: "src/images/c.png", DestinationPath: "Images/c.png"}, mod))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, "xpm"))

	var got Export
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "xpm", got.Profile)
	require.Len(t, got.Jobs, 2)
	assert.Equal(t, "images/a.png", got.Jobs[0].SourcePath)
	assert.Equal(t, "compiled-images/b.xpm", got.Jobs[1].DestinationPath)

	buf.Reset()
	require.NoError(t, s.ExportYAML(ctx, &buf, ""))
	var all Export
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &all))
	assert.Len(t, all.Jobs, 3)
}

func TestExportYAML_Empty(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(context.Background(), &buf, ""))
	assert.Contains(t, buf.String(), "jobs: []")
}
