package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// DiffResult is the difference between two keyed snapshots.
type DiffResult struct {
	Added    []string
	Removed  []string
	Modified []ModifiedItem
}

// ModifiedItem is a snapshot entry present on both sides with changes.
type ModifiedItem struct {
	Name string
	Diff string
}

// IsEmpty returns true if there are no changes.
func (r *DiffResult) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// DiffSnapshots compares two snapshots keyed by entry name. Entries present
// on both sides are marshalled to YAML and compared with dyff.
func DiffSnapshots(before, after map[string]interface{}, useColor bool) (*DiffResult, error) {
	result := &DiffResult{}

	for _, key := range sortedKeys(after) {
		old, ok := before[key]
		if !ok {
			result.Added = append(result.Added, key)
			continue
		}

		oldYAML, err := yaml.Marshal(old)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", key, err)
		}
		newYAML, err := yaml.Marshal(after[key])
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", key, err)
		}
		if bytes.Equal(oldYAML, newYAML) {
			continue
		}

		diff, err := diffYAML(oldYAML, newYAML, useColor)
		if err != nil {
			return nil, fmt.Errorf("comparing %s: %w", key, err)
		}
		if diff != "" {
			result.Modified = append(result.Modified, ModifiedItem{Name: key, Diff: diff})
		}
	}

	for _, key := range sortedKeys(before) {
		if _, ok := after[key]; !ok {
			result.Removed = append(result.Removed, key)
		}
	}

	return result, nil
}

// RenderDiff renders a diff result.
func RenderDiff(result *DiffResult, styles *Styles) string {
	if result == nil || result.IsEmpty() {
		return "No changes detected."
	}

	var sb strings.Builder

	if len(result.Added) > 0 {
		sb.WriteString(styles.Success.Render("Added:"))
		sb.WriteString("\n")
		for _, name := range result.Added {
			sb.WriteString("  + ")
			sb.WriteString(styles.Success.Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(result.Removed) > 0 {
		sb.WriteString(styles.Error.Render("Removed:"))
		sb.WriteString("\n")
		for _, name := range result.Removed {
			sb.WriteString("  - ")
			sb.WriteString(styles.Error.Render(name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(result.Modified) > 0 {
		sb.WriteString(styles.Warning.Render("Modified:"))
		sb.WriteString("\n")
		for _, mod := range result.Modified {
			sb.WriteString("  ~ ")
			sb.WriteString(styles.Warning.Render(mod.Name))
			sb.WriteString("\n")
			sb.WriteString(IndentDiff(mod.Diff, "    "))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("Summary: ")
	sb.WriteString(diffSummary(len(result.Added), len(result.Removed), len(result.Modified)))
	sb.WriteString("\n")

	return sb.String()
}

// IndentDiff indents every non-empty line of diff.
func IndentDiff(diff string, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// diffYAML computes a YAML-aware diff using dyff.
func diffYAML(before, after []byte, useColor bool) (string, error) {
	beforeInput, err := parseYAMLInput("before", before)
	if err != nil {
		return "", fmt.Errorf("parsing before YAML: %w", err)
	}

	afterInput, err := parseYAMLInput("after", after)
	if err != nil {
		return "", fmt.Errorf("parsing after YAML: %w", err)
	}

	report, err := dyff.CompareInputFiles(beforeInput, afterInput)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}

	if len(report.Diffs) == 0 {
		return "", nil
	}

	return renderDyffReport(report, useColor)
}

// parseYAMLInput parses YAML bytes into a dyff input file.
func parseYAMLInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{
			Location:  name,
			Documents: nil,
		}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{
		Location:  name,
		Documents: docs,
	}, nil
}

// renderDyffReport renders a dyff report to a string.
func renderDyffReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer

	reportWriter := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}

	if err := reportWriter.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// diffSummary returns a summary string of changes.
func diffSummary(added, removed, modified int) string {
	if added == 0 && removed == 0 && modified == 0 {
		return "No changes"
	}

	parts := make([]string, 0, 3)
	if added > 0 {
		parts = append(parts, strconv.Itoa(added)+" added")
	}
	if removed > 0 {
		parts = append(parts, strconv.Itoa(removed)+" removed")
	}
	if modified > 0 {
		parts = append(parts, strconv.Itoa(modified)+" modified")
	}

	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
