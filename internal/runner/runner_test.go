// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runFunc       func(name string, args []string, stdout, stderr io.Writer) error

	lastName string
	lastArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) Run(_ context.Context, name string, args []string, stdout, stderr io.Writer) error {
	m.lastName = name
	m.lastArgs = args
	if m.runFunc != nil {
		return m.runFunc(name, args, stdout, stderr)
	}
	return nil
}

func TestDetect(t *testing.T) {
	dockerReady := map[string]bool{
		"docker info":                      true,
		"docker image inspect gimp:latest": true,
		"podman info":                      true,
		"podman image exists gimp:latest":  true,
	}

	tests := []struct {
		name     string
		cfg      types.RunnerConfig
		exec     *mockExecutor
		wantName string
		wantErr  string
	}{
		{
			name:     "native preferred in auto mode",
			cfg:      types.RunnerConfig{Mode: types.RunnerAuto},
			exec:     &mockExecutor{availableBins: map[string]bool{"gimp": true, "docker": true}, runnableCmds: dockerReady},
			wantName: "native",
		},
		{
			name:     "docker fallback when gimp missing",
			cfg:      types.RunnerConfig{},
			exec:     &mockExecutor{availableBins: map[string]bool{"docker": true}, runnableCmds: dockerReady},
			wantName: "docker",
		},
		{
			name: "docker without image falls back to podman",
			cfg:  types.RunnerConfig{Mode: types.RunnerAuto},
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds: map[string]bool{
					"docker info":                     true,
					"podman info":                     true,
					"podman image exists gimp:latest": true,
				},
			},
			wantName: "podman",
		},
		{
			name:     "custom binary",
			cfg:      types.RunnerConfig{Mode: types.RunnerNative, Binary: "gimp-console-2.10"},
			exec:     &mockExecutor{availableBins: map[string]bool{"gimp-console-2.10": true}},
			wantName: "native",
		},
		{
			name:    "explicit native unavailable",
			cfg:     types.RunnerConfig{Mode: types.RunnerNative},
			exec:    &mockExecutor{availableBins: map[string]bool{"docker": true}, runnableCmds: dockerReady},
			wantErr: "no host runner available",
		},
		{
			name:     "explicit podman",
			cfg:      types.RunnerConfig{Mode: types.RunnerPodman},
			exec:     &mockExecutor{availableBins: map[string]bool{"gimp": true, "podman": true}, runnableCmds: dockerReady},
			wantName: "podman",
		},
		{
			name:    "nothing available",
			cfg:     types.RunnerConfig{},
			exec:    &mockExecutor{},
			wantErr: "no host runner available",
		},
		{
			name:    "unknown mode",
			cfg:     types.RunnerConfig{Mode: "qemu"},
			exec:    &mockExecutor{},
			wantErr: "unknown runner mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := detect(tt.cfg, tt.exec)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Name() != tt.wantName {
				t.Errorf("got runner %q, want %q", r.Name(), tt.wantName)
			}
		})
	}
}

func TestNativeRun(t *testing.T) {
	exec := &mockExecutor{
		runFunc: func(name string, args []string, stdout, stderr io.Writer) error {
			_, _ = stderr.Write([]byte("batch command executed successfully"))
			return nil
		},
	}
	r := newNative("gimp", exec)

	var stderr bytes.Buffer
	err := r.Run(context.Background(), Command{Args: []string{"-i", "-b", "(gimp-quit 0)"}, Stderr: &stderr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.lastName != "gimp" {
		t.Errorf("binary = %q, want gimp", exec.lastName)
	}
	if !reflect.DeepEqual(exec.lastArgs, []string{"-i", "-b", "(gimp-quit 0)"}) {
		t.Errorf("args = %v", exec.lastArgs)
	}
	if !strings.Contains(stderr.String(), "successfully") {
		t.Errorf("stderr not forwarded: %q", stderr.String())
	}
}

func TestContainerRunArgs(t *testing.T) {
	exec := &mockExecutor{}
	r := newDocker("gimp:2.10", exec)

	err := r.Run(context.Background(), Command{
		Args: []string{"-i", "-b", "(gimp-quit 0)"},
		Dirs: []string{"/work/images", "/work/out", "/work/images"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"run", "--rm",
		"-v", "/work/images:/work/images",
		"-v", "/work/out:/work/out",
		"-w", "/work/images",
		"gimp:2.10", "gimp",
		"-i", "-b", "(gimp-quit 0)",
	}
	if exec.lastName != "docker" {
		t.Errorf("binary = %q, want docker", exec.lastName)
	}
	if !reflect.DeepEqual(exec.lastArgs, want) {
		t.Errorf("args =\n  %v\nwant\n  %v", exec.lastArgs, want)
	}
}

func TestRunFailureWrapped(t *testing.T) {
	exec := &mockExecutor{
		runFunc: func(string, []string, io.Writer, io.Writer) error {
			return errors.New("exit status 1")
		},
	}
	for _, r := range []Runner{newNative("gimp", exec), newPodman("gimp:latest", exec)} {
		err := r.Run(context.Background(), Command{})
		if err == nil {
			t.Fatalf("%s: expected error, got nil", r.Name())
		}
		if !strings.Contains(err.Error(), "exit status 1") {
			t.Errorf("%s: error should wrap executor error, got: %v", r.Name(), err)
		}
	}
}
