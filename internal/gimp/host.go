// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gimp drives GIMP in batch mode as the image host for the asset
// converter.
//
// GIMP runs as one short-lived batch process per saved image. Load and merge
// only validate the source and record what is wanted; the Script-Fu program
// that performs load, merge, save, and delete inside GIMP is generated and
// run when the image is saved.
package gimp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/asset-converter/internal/runner"
	"github.com/pdiddy/asset-converter/pkg/types"
)

const quitCommand = "(gimp-quit 0)"

type image struct {
	source string
	merge  bool
}

// Host implements convert.Host on top of a runner.Runner.
type Host struct {
	runner runner.Runner

	mu     sync.Mutex
	images map[types.ImageHandle]*image
}

// NewHost creates a host that starts GIMP through r.
func NewHost(r runner.Runner) *Host {
	return &Host{
		runner: r,
		images: make(map[types.ImageHandle]*image),
	}
}

// Open returns the number of images loaded and not yet disposed.
func (h *Host) Open() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.images)
}

// LoadImage checks that path is a readable regular file and returns a new
// handle for it.
func (h *Host) LoadImage(_ context.Context, path string) (types.ImageHandle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}

	handle := types.ImageHandle(uuid.NewString())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.images[handle] = &image{source: abs}
	return handle, nil
}

// MergeVisibleLayers marks the image to be flattened before it is saved.
func (h *Host) MergeVisibleLayers(_ context.Context, handle types.ImageHandle) error {
	img, err := h.lookup(handle)
	if err != nil {
		return err
	}
	img.merge = true
	return nil
}

// SaveImage runs GIMP to write the image to path. GIMP batch mode does not
// reliably report Script-Fu failures through its exit status, so the output
// file must exist afterwards for the save to count as done.
func (h *Host) SaveImage(ctx context.Context, handle types.ImageHandle, path string, opts types.FormatOptions) error {
	img, err := h.lookup(handle)
	if err != nil {
		return err
	}

	dst, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	prog, err := program(img.source, dst, img.merge, opts)
	if err != nil {
		return err
	}

	// Remove stale output so the existence check below reflects this run.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous %s: %w", dst, err)
	}

	var stderr bytes.Buffer
	cmd := runner.Command{
		Args:   []string{"-i", "-b", prog, "-b", quitCommand},
		Dirs:   []string{filepath.Dir(img.source), filepath.Dir(dst)},
		Stderr: &stderr,
	}
	if err := h.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%w%s", err, detail(&stderr))
	}

	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("%s produced no output at %s%s", h.runner.Name(), dst, detail(&stderr))
	}
	return nil
}

// DisposeImage forgets the handle.
func (h *Host) DisposeImage(_ context.Context, handle types.ImageHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.images[handle]; !ok {
		return fmt.Errorf("unknown image handle %s", handle)
	}
	delete(h.images, handle)
	return nil
}

func (h *Host) lookup(handle types.ImageHandle) (*image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	img, ok := h.images[handle]
	if !ok {
		return nil, fmt.Errorf("unknown image handle %s", handle)
	}
	return img, nil
}

func detail(stderr *bytes.Buffer) string {
	s := strings.TrimSpace(stderr.String())
	if s == "" {
		return ""
	}
	return ": " + s
}
