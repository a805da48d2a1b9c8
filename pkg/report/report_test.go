package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
	pterm.DisableColor()
}

func borderResult(file string) FileResult {
	return FileResult{
		File:     file,
		Modified: true,
		Changes: []ChangeRecord{
			{File: file, Line: 1, RuleID: "css-border", Before: "var(--border)", After: "var(--color-border)"},
			{File: file, Line: 2, RuleID: "css-border", Before: "var(--border)", After: "var(--color-border)"},
			{File: file, Line: 3, RuleID: "css-border", Before: "var(--border)", After: "var(--color-border)"},
		},
	}
}

func TestRecordFold(t *testing.T) {
	r := New()
	r.Record(borderResult("a.css"))
	r.Record(FileResult{File: "b.css"})
	r.Record(FileResult{
		File:    "c.ts",
		Error:   errors.New("permission denied"),
		Changes: []ChangeRecord{{File: "c.ts", Line: 1, RuleID: "x", Before: "a", After: "b"}},
	})
	r.Record(FileResult{
		File:     "d.ts",
		Modified: true,
		Warnings: []string{"not idempotent"},
		Changes: []ChangeRecord{
			{File: "d.ts", Line: 4, RuleID: "type-User", Before: "User", After: "UserSchema"},
		},
	})

	s := r.Summary()
	assert.Equal(t, 4, s.FilesScanned)
	assert.Equal(t, 2, s.FilesModified)
	assert.Equal(t, 4, s.TotalChanges)
	assert.Equal(t, map[string]int{"css-border": 3, "type-User": 1}, s.ByRule)
	assert.Equal(t, 1, s.FilesFailed)
	assert.Equal(t, []FileError{{File: "c.ts", Error: "permission denied"}}, s.Errors)
	assert.Equal(t, []string{"d.ts: not idempotent"}, s.Warnings)
	assert.Equal(t, []string{"css-border", "type-User"}, s.RuleIDs())

	results := r.Results()
	require.Len(t, results, 4)
	assert.Equal(t, []string{"a.css", "b.css", "c.ts", "d.ts"}, []string{results[0].File, results[1].File, results[2].File, results[3].File})
}

func TestSummaryIsACopy(t *testing.T) {
	r := New()
	r.Record(borderResult("a.css"))
	r.SetVerification(Verification{Command: "tsc", Passed: true})

	s := r.Summary()
	s.ByRule["css-border"] = 100
	s.Verification.Passed = false

	again := r.Summary()
	assert.Equal(t, 3, again.ByRule["css-border"])
	assert.True(t, again.Verification.Passed)
}

func TestRecordConcurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Record(borderResult(fmt.Sprintf("f%d.css", i)))
		}(i)
	}
	wg.Wait()

	s := r.Summary()
	assert.Equal(t, 50, s.FilesScanned)
	assert.Equal(t, 50, s.FilesModified)
	assert.Equal(t, 150, s.TotalChanges)
}

func TestGroupChanges(t *testing.T) {
	changes := []ChangeRecord{
		{Before: "b", After: "B"},
		{Before: "a", After: "A"},
		{Before: "b", After: "B"},
		{Before: "b", After: "X"},
	}
	assert.Equal(t, []Group{
		{Before: "b", After: "B", Count: 2},
		{Before: "a", After: "A", Count: 1},
		{Before: "b", After: "X", Count: 1},
	}, GroupChanges(changes))
	assert.Empty(t, GroupChanges(nil))
}

func TestRender(t *testing.T) {
	r := New()
	r.Record(borderResult("src/a.css"))
	r.Record(FileResult{File: "src/b.css"})
	r.Record(FileResult{File: "src/c.css", Error: errors.New("reading file: permission denied")})

	tests := []struct {
		name        string
		verbose     bool
		contains    []string
		notContains []string
	}{
		{
			name:    "grouped",
			verbose: false,
			contains: []string{
				"src/a.css (3 changes)",
				"3x var(--border) -> var(--color-border)",
				"errors (1)",
				"src/c.css: reading file: permission denied",
				"css-border",
				"Files scanned:",
				"Files modified:",
				"Total changes:",
				"Files failed:",
			},
			notContains: []string{"Line 1:", "src/b.css"},
		},
		{
			name:    "verbose",
			verbose: true,
			contains: []string{
				"Line 1: var(--border) -> var(--color-border)",
				"Line 2: var(--border) -> var(--color-border)",
				"Line 3: var(--border) -> var(--color-border)",
			},
			notContains: []string{"3x "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(&buf, tt.verbose))
			out := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestRenderModes(t *testing.T) {
	t.Run("dry_run", func(t *testing.T) {
		r := New()
		r.SetDryRun(true)
		r.Record(borderResult("a.css"))

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, false))
		assert.Contains(t, buf.String(), "dry run: no files were written")
	})

	t.Run("nothing_to_do", func(t *testing.T) {
		r := New()
		r.Record(FileResult{File: "a.css"})

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, false))
		assert.Contains(t, buf.String(), "no changes needed")
		assert.NotContains(t, buf.String(), "Rule")
	})

	t.Run("verification_failed", func(t *testing.T) {
		r := New()
		r.Record(borderResult("a.css"))
		r.SetVerification(Verification{Command: "npx tsc --noEmit", ExitCode: 2, Output: "error TS2304"})

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, true))
		assert.Contains(t, buf.String(), "verification failed (exit 2): npx tsc --noEmit")
		assert.Contains(t, buf.String(), "error TS2304")
	})

	t.Run("removed_lines_and_diff", func(t *testing.T) {
		r := New()
		r.Record(FileResult{
			File:     "a.ts",
			Modified: true,
			Changes:  []ChangeRecord{{File: "a.ts", Line: 2, RuleID: "dedupe", Before: "import x"}},
			Diff:     "--- a/a.ts\n+++ b/a.ts\n-import x\n",
		})

		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, false))
		assert.Contains(t, buf.String(), "1x import x -> (removed)")
		assert.Contains(t, buf.String(), "-import x")
	})
}

func TestRenderJSON(t *testing.T) {
	r := New()
	r.Record(borderResult("a.css"))
	r.Record(FileResult{File: "b.css", Error: errors.New("boom")})
	r.SetVerification(Verification{Command: "tsc", Passed: true, Duration: time.Second})

	var buf bytes.Buffer
	require.NoError(t, r.RenderJSON(&buf))

	var doc struct {
		Summary Summary `json:"summary"`
		Files   []struct {
			File     string         `json:"file"`
			Modified bool           `json:"modified"`
			Changes  []ChangeRecord `json:"changes"`
			Error    string         `json:"error"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 2, doc.Summary.FilesScanned)
	assert.Equal(t, 3, doc.Summary.ByRule["css-border"])
	require.NotNil(t, doc.Summary.Verification)
	assert.True(t, doc.Summary.Verification.Passed)
	require.Len(t, doc.Files, 2)
	assert.Len(t, doc.Files[0].Changes, 3)
	assert.Equal(t, "boom", doc.Files[1].Error)
}

func TestRenderYAML(t *testing.T) {
	r := New()
	r.Record(borderResult("a.css"))

	var buf bytes.Buffer
	require.NoError(t, r.RenderYAML(&buf))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	summary, ok := doc["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, summary["total_changes"])

	files, ok := doc["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 1)
	assert.Equal(t, "a.css", files[0].(map[string]any)["file"])
	assert.True(t, strings.Contains(buf.String(), "rule_id: css-border"))
}
