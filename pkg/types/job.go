// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the asset conversion
// pipeline: profiles, conversion jobs, and run summaries.
package types

import "time"

// ConversionJob pairs a source asset with the path its converted form is
// written to. Jobs are derived from the source path and never stored by the
// converter itself.
type ConversionJob struct {
	SourcePath      string `json:"source_path" yaml:"source_path"`
	DestinationPath string `json:"destination_path" yaml:"destination_path"`
}

// ImageHandle is an opaque reference to an image loaded by the host
// application. Only the host that issued it can interpret it.
type ImageHandle string

// RunSummary holds the outcome of one conversion run.
type RunSummary struct {
	// Converted counts files loaded, saved, and disposed by the host.
	Converted int `json:"converted" yaml:"converted"`

	// Unchanged counts files skipped in incremental mode.
	Unchanged int `json:"unchanged" yaml:"unchanged"`

	// Unmatched counts files whose extension is not recognized.
	Unmatched int `json:"unmatched" yaml:"unmatched"`
}

// Total returns the number of files seen under the source root.
func (s RunSummary) Total() int {
	return s.Converted + s.Unchanged + s.Unmatched
}

// RunStatus is the final state of a recorded run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunRecord is a run as stored in the ledger.
type RunRecord struct {
	ID         string     `json:"id" yaml:"id"`
	Profile    string     `json:"profile" yaml:"profile"`
	SourceRoot string     `json:"source_root" yaml:"source_root"`
	DestRoot   string     `json:"dest_root" yaml:"dest_root"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status     RunStatus  `json:"status" yaml:"status"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	Summary    RunSummary `json:"summary" yaml:"summary"`
}

// JobRecord is a converted job as stored in the ledger.
type JobRecord struct {
	Profile       string    `json:"profile" yaml:"profile"`
	ConversionJob `yaml:",inline"`
	SourceModTime time.Time `json:"source_mod_time" yaml:"source_mod_time"`
	ConvertedAt   time.Time `json:"converted_at" yaml:"converted_at"`
}
