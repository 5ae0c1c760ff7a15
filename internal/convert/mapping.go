// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pdiddy/asset-converter/pkg/types"
)

// ErrOutsideRoot is returned when a path does not lie under the source root.
var ErrOutsideRoot = errors.New("path is outside the source root")

// Mapper derives conversion jobs from source paths for one profile.
type Mapper struct {
	srcRoot string
	dstRoot string
	exts    map[string]struct{}
	target  string

	// Absolute forms of the roots, used for every root comparison so a
	// relative and an absolute spelling of the same directory agree.
	srcAbs string
	dstAbs string
}

// NewMapper validates the profile and returns a Mapper for it. Extensions
// are normalized to lower case with a leading dot.
func NewMapper(p types.Profile) (*Mapper, error) {
	if strings.TrimSpace(p.SourceRoot) == "" {
		return nil, fmt.Errorf("profile %q: source root is empty", p.Name)
	}
	if strings.TrimSpace(p.DestRoot) == "" {
		return nil, fmt.Errorf("profile %q: destination root is empty", p.Name)
	}

	src := filepath.Clean(p.SourceRoot)
	dst := filepath.Clean(p.DestRoot)
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("profile %q: resolving source root: %w", p.Name, err)
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return nil, fmt.Errorf("profile %q: resolving destination root: %w", p.Name, err)
	}
	if srcAbs == dstAbs {
		return nil, fmt.Errorf("profile %q: source and destination roots are both %s", p.Name, srcAbs)
	}

	exts := make(map[string]struct{}, len(p.SourceExtensions))
	for _, e := range p.SourceExtensions {
		if n := normalizeExt(e); n != "" {
			exts[n] = struct{}{}
		}
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("profile %q: no source extensions", p.Name)
	}

	target := normalizeExt(p.TargetExtension)
	if target == "" {
		return nil, fmt.Errorf("profile %q: target extension is empty", p.Name)
	}

	return &Mapper{
		srcRoot: src,
		dstRoot: dst,
		exts:    exts,
		target:  target,
		srcAbs:  srcAbs,
		dstAbs:  dstAbs,
	}, nil
}

// SourceRoot returns the cleaned source root.
func (m *Mapper) SourceRoot() string { return m.srcRoot }

// DestRoot returns the cleaned destination root.
func (m *Mapper) DestRoot() string { return m.dstRoot }

// Map computes the job for path. The second return value is false when the
// file's extension is not recognized; no job is produced in that case.
//
// Matching looks only at the final extension of the file name, so a
// directory such as "sprites.png/" never affects the result.
func (m *Mapper) Map(path string) (types.ConversionJob, bool, error) {
	rel, err := m.rel(path)
	if err != nil {
		return types.ConversionJob{}, false, fmt.Errorf("%s: %w", path, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return types.ConversionJob{}, false, fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}

	base := filepath.Base(rel)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return types.ConversionJob{}, false, nil
	}
	if _, ok := m.exts[strings.ToLower(ext)]; !ok {
		return types.ConversionJob{}, false, nil
	}

	stem := strings.TrimSuffix(rel, ext)
	return types.ConversionJob{
		SourcePath:      filepath.Join(m.srcRoot, rel),
		DestinationPath: filepath.Join(m.dstRoot, stem+m.target),
	}, true, nil
}

// Plan walks the source root in lexical order and returns the job for every
// recognized file, along with the number of files that were not recognized.
// When the destination root lies inside the source root its subtree is not
// walked, so earlier output is never fed back in as input.
func Plan(m *Mapper) ([]types.ConversionJob, int, error) {
	var (
		jobs      []types.ConversionJob
		unmatched int
	)

	err := filepath.WalkDir(m.srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == m.srcRoot {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if abs == m.dstAbs {
				return filepath.SkipDir
			}
			return nil
		}

		job, ok, err := m.Map(path)
		if err != nil {
			return err
		}
		if !ok {
			unmatched++
			return nil
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walking %s: %w", m.srcRoot, err)
	}

	return jobs, unmatched, nil
}

// rel returns path relative to the source root. Paths spelled in the same
// form as the root are compared as given; mixed relative and absolute forms
// are resolved first.
func (m *Mapper) rel(path string) (string, error) {
	path = filepath.Clean(path)
	if filepath.IsAbs(path) == filepath.IsAbs(m.srcRoot) {
		return filepath.Rel(m.srcRoot, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Rel(m.srcAbs, abs)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
