package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent change entries
	nameWidth  = 35 // base width for the summary labels
)

// Group is a run of identical (before, after) changes within one file
type Group struct {
	Before string
	After  string
	Count  int
}

// 🔢 GroupChanges groups changes by (before, after) in first-seen order
func GroupChanges(changes []ChangeRecord) []Group {
	index := map[[2]string]int{}
	var groups []Group
	for _, c := range changes {
		key := [2]string{c.Before, c.After}
		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{Before: c.Before, After: c.After, Count: 1})
	}
	return groups
}

func oneLine(s string) string {
	if s == "" {
		return "(removed)"
	}
	return strings.ReplaceAll(s, "\n", `\n`)
}

// 🖨️ Render writes the human readable report. Verbose lists every change,
// otherwise identical changes in a file are grouped.
func (r *Reporter) Render(w io.Writer, verbose bool) error {
	results := r.Results()
	summary := r.Summary()

	var b strings.Builder
	indent := strings.Repeat(" ", fileIndent)

	for _, res := range results {
		if res.Error != nil || len(res.Changes) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n%s %s (%d changes)\n", color.YellowString("⟳"), color.New(color.Bold).Sprint(res.File), len(res.Changes))
		if verbose {
			for _, c := range res.Changes {
				fmt.Fprintf(&b, "%sLine %d: %s -> %s\n", indent, c.Line, oneLine(c.Before), oneLine(c.After))
			}
		} else {
			for _, g := range GroupChanges(res.Changes) {
				fmt.Fprintf(&b, "%s%dx %s -> %s\n", indent, g.Count, oneLine(g.Before), oneLine(g.After))
			}
		}

		if res.Diff != "" {
			b.WriteString("\n")
			for _, line := range strings.Split(strings.TrimSuffix(res.Diff, "\n"), "\n") {
				b.WriteString(indent + colorDiffLine(line) + "\n")
			}
		}
	}

	if len(summary.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", color.RedString("❌ errors (%d)", len(summary.Errors)))
		for _, e := range summary.Errors {
			fmt.Fprintf(&b, "%s%s %s: %s\n", indent, color.RedString("✗"), e.File, e.Error)
		}
	}

	if len(summary.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", color.YellowString("⚠️  warnings (%d)", len(summary.Warnings)))
		for _, msg := range summary.Warnings {
			fmt.Fprintf(&b, "%s%s\n", indent, msg)
		}
	}

	if summary.TotalChanges > 0 {
		table, err := renderRuleTable(summary)
		if err != nil {
			return err
		}
		b.WriteString("\n" + table)
	}

	b.WriteString("\n")
	b.WriteString(summaryLine("Files scanned:", strconv.Itoa(summary.FilesScanned)))
	b.WriteString(summaryLine("Files modified:", strconv.Itoa(summary.FilesModified)))
	b.WriteString(summaryLine("Total changes:", strconv.Itoa(summary.TotalChanges)))
	if summary.FilesFailed > 0 {
		b.WriteString(summaryLine("Files failed:", color.RedString("%d", summary.FilesFailed)))
	}

	switch {
	case summary.DryRun && summary.TotalChanges > 0:
		fmt.Fprintf(&b, "\n%s\n", color.CyanString("🔍 dry run: no files were written"))
	case summary.TotalChanges == 0 && summary.FilesFailed == 0:
		fmt.Fprintf(&b, "\n%s\n", color.GreenString("✅ no changes needed"))
	}

	if v := summary.Verification; v != nil {
		if v.Passed {
			fmt.Fprintf(&b, "%s\n", color.GreenString("✅ verification passed: %s (%s)", v.Command, v.Duration.Round(time.Millisecond)))
		} else {
			fmt.Fprintf(&b, "%s\n", color.RedString("❌ verification failed (exit %d): %s", v.ExitCode, v.Command))
			if verbose && v.Output != "" {
				b.WriteString(v.Output)
				if !strings.HasSuffix(v.Output, "\n") {
					b.WriteString("\n")
				}
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Errorf("writing report: %w", err)
	}
	return nil
}

func summaryLine(label, value string) string {
	return fmt.Sprintf("📊 %-*s %s\n", nameWidth/2, label, value)
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return color.New(color.Bold).Sprint(line)
	case strings.HasPrefix(line, "+"):
		return color.GreenString("%s", line)
	case strings.HasPrefix(line, "-"):
		return color.RedString("%s", line)
	case strings.HasPrefix(line, "@@"):
		return color.CyanString("%s", line)
	default:
		return line
	}
}

func renderRuleTable(summary Summary) (string, error) {
	data := pterm.TableData{{"Rule", "Changes"}}
	for _, id := range summary.RuleIDs() {
		data = append(data, []string{id, strconv.Itoa(summary.ByRule[id])})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering rule table: %w", err)
	}
	return out + "\n", nil
}

// fileDocument is FileResult with its error flattened for structured output
type fileDocument struct {
	FileResult `yaml:",inline"`
	ErrorText  string `json:"error,omitempty" yaml:"error,omitempty"`
}

type document struct {
	Summary Summary        `json:"summary" yaml:"summary"`
	Files   []fileDocument `json:"files" yaml:"files"`
}

func (r *Reporter) document() document {
	results := r.Results()
	doc := document{
		Summary: r.Summary(),
		Files:   make([]fileDocument, 0, len(results)),
	}
	for _, res := range results {
		fd := fileDocument{FileResult: res}
		if res.Error != nil {
			fd.ErrorText = res.Error.Error()
		}
		doc.Files = append(doc.Files, fd)
	}
	return doc
}

// RenderJSON writes the summary and every file result as indented JSON
func (r *Reporter) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.document()); err != nil {
		return errors.Errorf("encoding json report: %w", err)
	}
	return nil
}

// RenderYAML writes the summary and every file result as YAML
func (r *Reporter) RenderYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.document()); err != nil {
		return errors.Errorf("encoding yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Errorf("closing yaml encoder: %w", err)
	}
	return nil
}
