// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert maps a source asset tree onto a destination tree and
// drives an image host through load, merge, save, and dispose for every
// recognized file, one file at a time.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// Host is the image application the converter delegates all pixel work to.
// The GIMP batch backend implements it; tests use a recorder.
type Host interface {
	// LoadImage opens the image at path and returns a handle to it.
	LoadImage(ctx context.Context, path string) (types.ImageHandle, error)

	// MergeVisibleLayers flattens the visible layers of the image.
	MergeVisibleLayers(ctx context.Context, h types.ImageHandle) error

	// SaveImage writes the image to path. opts are format specific and
	// interpreted by the host only.
	SaveImage(ctx context.Context, h types.ImageHandle, path string, opts types.FormatOptions) error

	// DisposeImage releases the image. The handle is invalid afterwards.
	DisposeImage(ctx context.Context, h types.ImageHandle) error
}

// Tracker remembers which jobs were converted from which source revision.
type Tracker interface {
	// Unchanged reports whether job was last converted from a source with
	// the given modification time.
	Unchanged(ctx context.Context, job types.ConversionJob, modTime time.Time) (bool, error)

	// Record stores that job was converted from a source with modTime.
	Record(ctx context.Context, job types.ConversionJob, modTime time.Time) error
}

// Options adjusts a ConvertTree run.
type Options struct {
	// Tracker, when non-nil, records every converted job.
	Tracker Tracker

	// Incremental skips jobs the Tracker reports unchanged. It has no
	// effect without a Tracker.
	Incremental bool

	// DryRun prints the plan without touching the host or the filesystem.
	DryRun bool
}

// ConvertJob converts one file: it makes sure the destination directory
// exists, then loads, optionally merges, and saves the image. Once the load
// succeeded the image is always disposed, also when a later step fails.
func ConvertJob(ctx context.Context, h Host, job types.ConversionJob, merge bool, opts types.FormatOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(job.DestinationPath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", job.DestinationPath, err)
	}

	img, err := h.LoadImage(ctx, job.SourcePath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", job.SourcePath, err)
	}
	defer func() {
		if derr := h.DisposeImage(ctx, img); derr != nil && err == nil {
			err = fmt.Errorf("disposing %s: %w", job.SourcePath, derr)
		}
	}()

	if merge {
		if err := h.MergeVisibleLayers(ctx, img); err != nil {
			return fmt.Errorf("merging layers of %s: %w", job.SourcePath, err)
		}
	}

	if err := h.SaveImage(ctx, img, job.DestinationPath, opts); err != nil {
		return fmt.Errorf("saving %s: %w", job.DestinationPath, err)
	}
	return nil
}

// ConvertTree converts every recognized file under the profile's source
// root, printing one line per file to w. The first failure aborts the run
// and is returned together with the counts reached so far.
func ConvertTree(ctx context.Context, h Host, p types.Profile, opts Options, w io.Writer) (types.RunSummary, error) {
	m, err := NewMapper(p)
	if err != nil {
		return types.RunSummary{}, err
	}

	jobs, unmatched, err := Plan(m)
	if err != nil {
		return types.RunSummary{}, err
	}

	summary := types.RunSummary{Unmatched: unmatched}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if opts.DryRun {
			fmt.Fprintf(w, "would convert: %s -> %s\n", job.SourcePath, job.DestinationPath)
			summary.Converted++
			continue
		}

		var modTime time.Time
		if opts.Tracker != nil {
			info, err := os.Stat(job.SourcePath)
			if err != nil {
				return summary, fmt.Errorf("stat %s: %w", job.SourcePath, err)
			}
			modTime = info.ModTime()
		}

		if opts.Tracker != nil && opts.Incremental {
			skip, err := upToDate(ctx, opts.Tracker, job, modTime)
			if err != nil {
				return summary, err
			}
			if skip {
				fmt.Fprintf(w, "unchanged: %s\n", job.SourcePath)
				summary.Unchanged++
				continue
			}
		}

		if err := ConvertJob(ctx, h, job, p.MergeLayers, p.Options); err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", job.SourcePath, err)
			return summary, err
		}

		if opts.Tracker != nil {
			if err := opts.Tracker.Record(ctx, job, modTime); err != nil {
				return summary, fmt.Errorf("recording %s: %w", job.SourcePath, err)
			}
		}

		fmt.Fprintf(w, "converted: %s -> %s\n", job.SourcePath, job.DestinationPath)
		summary.Converted++
	}

	fmt.Fprintf(w, "\n%s summary: %d converted, %d unchanged, %d unmatched (total: %d)\n",
		p.Name, summary.Converted, summary.Unchanged, summary.Unmatched, summary.Total())
	return summary, nil
}

// upToDate reports whether the destination exists and the tracker saw the
// same source revision before.
func upToDate(ctx context.Context, t Tracker, job types.ConversionJob, modTime time.Time) (bool, error) {
	if _, err := os.Stat(job.DestinationPath); err != nil {
		return false, nil
	}
	ok, err := t.Unchanged(ctx, job, modTime)
	if err != nil {
		return false, fmt.Errorf("checking ledger for %s: %w", job.SourcePath, err)
	}
	return ok, nil
}
