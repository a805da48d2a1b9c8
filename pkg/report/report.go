// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"sort"
	"sync"
	"time"
)

// 📝 ChangeRecord is one match instance inside one file
type ChangeRecord struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line" yaml:"line"`
	RuleID string `json:"rule_id" yaml:"rule_id"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// 📄 FileResult is the outcome of processing one file
type FileResult struct {
	File     string         `json:"file" yaml:"file"`
	Changes  []ChangeRecord `json:"changes,omitempty" yaml:"changes,omitempty"`
	Modified bool           `json:"modified" yaml:"modified"`
	Error    error          `json:"-" yaml:"-"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Diff     string         `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// FileError is a per-file failure as it appears in the summary
type FileError struct {
	File  string `json:"file" yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// 🧪 Verification is the outcome of the external verification step
type Verification struct {
	Command  string        `json:"command" yaml:"command"`
	Passed   bool          `json:"passed" yaml:"passed"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	Output   string        `json:"output,omitempty" yaml:"output,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// 📊 Summary aggregates every recorded FileResult
type Summary struct {
	FilesScanned  int            `json:"files_scanned" yaml:"files_scanned"`
	FilesModified int            `json:"files_modified" yaml:"files_modified"`
	TotalChanges  int            `json:"total_changes" yaml:"total_changes"`
	ByRule        map[string]int `json:"by_rule" yaml:"by_rule"`
	FilesFailed   int            `json:"files_failed" yaml:"files_failed"`
	Errors        []FileError    `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings      []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	DryRun        bool           `json:"dry_run" yaml:"dry_run"`
	Verification  *Verification  `json:"verification,omitempty" yaml:"verification,omitempty"`
}

// RuleIDs returns the keys of ByRule, sorted
func (s Summary) RuleIDs() []string {
	ids := make([]string, 0, len(s.ByRule))
	for id := range s.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s Summary) clone() Summary {
	out := s
	out.ByRule = make(map[string]int, len(s.ByRule))
	for k, v := range s.ByRule {
		out.ByRule[k] = v
	}
	out.Errors = append([]FileError(nil), s.Errors...)
	out.Warnings = append([]string(nil), s.Warnings...)
	if s.Verification != nil {
		v := *s.Verification
		out.Verification = &v
	}
	return out
}

// 🔧 Reporter folds FileResults into a Summary. It is safe for concurrent use.
type Reporter struct {
	mu      sync.Mutex
	results []FileResult
	summary Summary
}

// 🏭 New creates an empty reporter
func New() *Reporter {
	return &Reporter{
		summary: Summary{ByRule: map[string]int{}},
	}
}

// Record folds one result into the summary. Failed files count as scanned
// but contribute no changes.
func (r *Reporter) Record(res FileResult) {
	res.Changes = append([]ChangeRecord(nil), res.Changes...)
	res.Warnings = append([]string(nil), res.Warnings...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, res)
	r.summary.FilesScanned++

	for _, w := range res.Warnings {
		r.summary.Warnings = append(r.summary.Warnings, res.File+": "+w)
	}

	if res.Error != nil {
		r.summary.FilesFailed++
		r.summary.Errors = append(r.summary.Errors, FileError{File: res.File, Error: res.Error.Error()})
		return
	}

	if res.Modified {
		r.summary.FilesModified++
	}
	for _, c := range res.Changes {
		r.summary.TotalChanges++
		r.summary.ByRule[c.RuleID]++
	}
}

// Warn records a run-level warning not tied to a single file result
func (r *Reporter) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Warnings = append(r.summary.Warnings, msg)
}

func (r *Reporter) SetDryRun(dryRun bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.DryRun = dryRun
}

func (r *Reporter) SetVerification(v Verification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Verification = &v
}

// Summary returns a copy of the current aggregate
func (r *Reporter) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary.clone()
}

// Results returns the recorded results in record order
func (r *Reporter) Results() []FileResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FileResult(nil), r.results...)
}
