// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runner starts the host image application, either straight from
// PATH or inside a docker or podman container.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/pdiddy/asset-converter/pkg/types"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// containerGIMP is the host command inside the container image.
	containerGIMP = "gimp"
)

// ErrUnavailable is returned when no usable runner can be found.
var ErrUnavailable = errors.New("no host runner available")

// Command is one invocation of the host application.
type Command struct {
	// Args are passed to the host binary.
	Args []string

	// Dirs must be visible to the host. Container runners bind-mount each
	// of them at the same absolute path.
	Dirs []string

	Stdout io.Writer
	Stderr io.Writer
}

// Runner starts the host application.
type Runner interface {
	// Name returns the runner name ("native", "docker", or "podman").
	Name() string

	// Available reports whether the runner can start the host.
	Available() bool

	// Run executes the host with cmd and waits for it to exit.
	Run(ctx context.Context, cmd Command) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// native runs the host binary found on PATH.
type native struct {
	bin  string
	exec executor
}

func (n *native) Name() string { return string(types.RunnerNative) }

func (n *native) Available() bool {
	_, err := n.exec.LookPath(n.bin)
	return err == nil
}

func (n *native) Run(ctx context.Context, cmd Command) error {
	if err := n.exec.Run(ctx, n.bin, cmd.Args, cmd.Stdout, cmd.Stderr); err != nil {
		return fmt.Errorf("running %s: %w", n.bin, err)
	}
	return nil
}

// container runs the host inside a container image. Docker and Podman share
// the same logic; they differ only in binary name and the subcommand used
// to check image existence.
type container struct {
	bin           string
	image         string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          executor
}

func (c *container) Name() string { return c.bin }

func (c *container) Available() bool {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return false
	}
	if c.exec.RunSilent(context.Background(), c.bin, "info") != nil {
		return false
	}
	return c.imageExists() == nil
}

func (c *container) imageExists() error {
	args := make([]string, 0, len(c.imageCheckCmd)+1)
	args = append(args, c.imageCheckCmd...)
	args = append(args, c.image)

	if err := c.exec.RunSilent(context.Background(), c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", c.image, c.bin, err)
	}
	return nil
}

func (c *container) Run(ctx context.Context, cmd Command) error {
	args := c.runArgs(cmd)
	if err := c.exec.Run(ctx, c.bin, args, cmd.Stdout, cmd.Stderr); err != nil {
		return fmt.Errorf("running %s container %s: %w", c.bin, c.image, err)
	}
	return nil
}

func (c *container) runArgs(cmd Command) []string {
	args := []string{"run", "--rm"}
	seen := make(map[string]bool, len(cmd.Dirs))
	for _, d := range cmd.Dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		args = append(args, "-v", d+":"+d)
	}
	if len(cmd.Dirs) > 0 && cmd.Dirs[0] != "" {
		args = append(args, "-w", cmd.Dirs[0])
	}
	args = append(args, c.image, containerGIMP)
	return append(args, cmd.Args...)
}

func newNative(bin string, exec executor) *native {
	return &native{bin: bin, exec: exec}
}

func newDocker(image string, exec executor) *container {
	return &container{
		bin:           binDocker,
		image:         image,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodman(image string, exec executor) *container {
	return &container{
		bin:           binPodman,
		image:         image,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// Detect returns the runner selected by cfg. In auto mode it tries the
// native binary first, then docker, then podman.
func Detect(cfg types.RunnerConfig) (Runner, error) {
	return detect(cfg, defaultExec)
}

func detect(cfg types.RunnerConfig, exec executor) (Runner, error) {
	bin := cfg.Binary
	if bin == "" {
		bin = types.DefaultGIMPBinary
	}
	image := cfg.Image
	if image == "" {
		image = types.DefaultGIMPImage
	}

	var candidates []Runner
	switch cfg.Mode {
	case types.RunnerAuto, "":
		candidates = []Runner{newNative(bin, exec), newDocker(image, exec), newPodman(image, exec)}
	case types.RunnerNative:
		candidates = []Runner{newNative(bin, exec)}
	case types.RunnerDocker:
		candidates = []Runner{newDocker(image, exec)}
	case types.RunnerPodman:
		candidates = []Runner{newPodman(image, exec)}
	default:
		return nil, fmt.Errorf("unknown runner mode %q: use auto, native, docker, or podman", cfg.Mode)
	}

	for _, r := range candidates {
		if r.Available() {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: %s not on PATH and no container runtime with image %s",
		ErrUnavailable, bin, image)
}
