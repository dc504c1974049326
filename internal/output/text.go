package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
)

const indent = "  "

// WriteImageReport writes an image report as text. Successes come first,
// most severe first, followed by the failures.
func WriteImageReport(w io.Writer, r report.ImageReport) error {
	var sections []string

	if len(r.BreakingUpdates) > 0 {
		sections = append(sections, section(len(r.BreakingUpdates), "with breaking update", updateLines(r.BreakingUpdates, "-!>", "")))
	}
	if len(r.CompatibleUpdates) > 0 {
		sections = append(sections, section(len(r.CompatibleUpdates), "with compatible update", updateLines(r.CompatibleUpdates, "->", "")))
	}
	if len(r.NoUpdates) > 0 {
		sections = append(sections, section(len(r.NoUpdates), "with no updates", nameLines(r.NoUpdates, "")))
	}
	if len(r.Failures) > 0 {
		sections = append(sections, section(len(r.Failures), "with failure", failureLines(r.Failures, "")))
	}

	return writeSections(w, sections)
}

// WriteComposeReport writes a compose report as text. Images are listed
// under their service, indented by two spaces.
func WriteComposeReport(w io.Writer, r report.ComposeReport) error {
	var sections []string

	if len(r.BreakingUpdates) > 0 {
		sections = append(sections, section(len(r.BreakingUpdates), "with breaking update",
			serviceLines(r.BreakingUpdates, func(items []report.Item[image.Image, update.Candidate]) []string {
				return updateLines(items, "-!>", indent)
			})))
	}
	if len(r.CompatibleUpdates) > 0 {
		sections = append(sections, section(len(r.CompatibleUpdates), "with compatible update",
			serviceLines(r.CompatibleUpdates, func(items []report.Item[image.Image, update.Candidate]) []string {
				return updateLines(items, "->", indent)
			})))
	}
	if len(r.NoUpdates) > 0 {
		sections = append(sections, section(len(r.NoUpdates), "with no updates",
			serviceLines(r.NoUpdates, func(items []report.Item[image.Image, struct{}]) []string {
				return nameLines(items, indent)
			})))
	}
	if len(r.Failures) > 0 {
		var lines []string
		for _, s := range r.Failures {
			if s.Value.Err != nil {
				lines = append(lines, fmt.Sprintf("%s: %v", s.Key, s.Value.Err))
				continue
			}
			lines = append(lines, s.Key+":")
			lines = append(lines, failureLines(s.Value.Images, indent)...)
		}
		sections = append(sections, section(len(r.Failures), "with failure", lines))
	}

	return writeSections(w, sections)
}

func section(n int, title string, lines []string) string {
	return fmt.Sprintf("%d %s:\n%s", n, title, strings.Join(lines, "\n"))
}

func writeSections(w io.Writer, sections []string) error {
	if len(sections) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, strings.Join(sections, "\n\n")); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func updateLines(items []report.Item[image.Image, update.Candidate], arrow, prefix string) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s%s %s %s", prefix, item.Key, arrow, item.Key.WithTag(item.Value.Tag))
	}
	return lines
}

func nameLines[V any](items []report.Item[image.Image, V], prefix string) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = prefix + item.Key.String()
	}
	return lines
}

func failureLines(items []report.Item[image.Image, error], prefix string) []string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s%s: %v", prefix, item.Key, item.Value)
	}
	return lines
}

func serviceLines[V any](services []report.Item[string, []V], render func([]V) []string) []string {
	var lines []string
	for _, s := range services {
		lines = append(lines, s.Key+":")
		lines = append(lines, render(s.Value)...)
	}
	return lines
}
