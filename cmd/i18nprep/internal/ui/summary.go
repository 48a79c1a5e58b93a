// Package ui renders CLI summaries.
package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	addedStyle   = okStyle
	removedStyle = errorStyle
)

// FileRow is one processed input.
type FileRow struct {
	Path       string
	Components int
	Messages   int
	Warnings   int
	Skipped    bool
}

// Summary renders the per-file results of a process run.
func Summary(w io.Writer, rows []FileRow, outputs int) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FILE", "COMPONENTS", "MESSAGES", "WARNINGS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var messages, warnings, skipped int
	for _, r := range rows {
		if r.Skipped {
			skipped++
			t.Row(r.Path, mutedStyle.Render("not localizable"), "", "")
			continue
		}
		messages += r.Messages
		warnings += r.Warnings
		warn := strconv.Itoa(r.Warnings)
		if r.Warnings > 0 {
			warn = warnStyle.Render(warn)
		}
		t.Row(r.Path, strconv.Itoa(r.Components), strconv.Itoa(r.Messages), warn)
	}

	fmt.Fprintln(w, t.Render())
	status := okStyle.Render("✓")
	if warnings > 0 {
		status = warnStyle.Render("!")
	}
	fmt.Fprintf(w, "%s %s %d files, %d messages, %d warnings, %d skipped, %d outputs written\n",
		status, titleStyle.Render("Processed"), len(rows), messages, warnings, skipped, outputs)
}

// Change is one catalog difference.
type Change struct {
	Kind      string // added, removed or changed
	Component string
	Key       string
	Old       string
	New       string
}

// CatalogDiff renders the differences between two catalog runs.
func CatalogDiff(w io.Writer, run, previous int64, changes []Change) {
	if previous == 0 {
		fmt.Fprintf(w, "%s run %d (no previous run)\n", titleStyle.Render("Catalog"), run)
	} else {
		fmt.Fprintf(w, "%s run %d vs %d\n", titleStyle.Render("Catalog"), run, previous)
	}
	if len(changes) == 0 {
		fmt.Fprintln(w, okStyle.Render("✓ no message keys changed"))
		return
	}
	for _, c := range changes {
		switch c.Kind {
		case "added":
			fmt.Fprintln(w, addedStyle.Render(fmt.Sprintf("+ %s %s = %s", c.Component, c.Key, c.New)))
		case "removed":
			fmt.Fprintln(w, removedStyle.Render(fmt.Sprintf("- %s %s = %s", c.Component, c.Key, c.Old)))
		default:
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("~ %s %s: %s -> %s", c.Component, c.Key, c.Old, c.New)))
		}
	}
}

// Verify renders unresolved references.
func Verify(w io.Writer, file string, references int, unresolved, missing []string) {
	if len(unresolved) == 0 && len(missing) == 0 {
		fmt.Fprintf(w, "%s %s: %d references resolved\n", okStyle.Render("✓"), file, references)
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), file)
	for _, id := range missing {
		fmt.Fprintf(w, "  missing bundle %s\n", id)
	}
	for _, ref := range unresolved {
		fmt.Fprintf(w, "  unresolved %s\n", ref)
	}
}

// Error renders an error line.
func Error(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("Error:"), err)
}
