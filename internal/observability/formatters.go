// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/UsamaZuberi/portfolio-v2/internal/schemas"
	"github.com/UsamaZuberi/portfolio-v2/internal/timeline"
	"github.com/UsamaZuberi/portfolio-v2/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s%s │\n", clip(title, inner), pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = clip(line, inner)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad returns the spaces needed to fill s to width runes.
func pad(s string, width int) string {
	n := width - utf8.RuneCountInString(s)
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// PrintDocument outputs a summary of a resolved data document.
func (p *Printer) PrintDocument(doc *types.Document, source string) {
	if doc == nil {
		p.printBox("PORTFOLIO DATA", fmt.Sprintf("No document available (source: %s)", source))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:         %s\n", doc.Hero.Name))
	sb.WriteString(fmt.Sprintf("Designation:  %s\n", doc.Hero.Designation))
	sb.WriteString(fmt.Sprintf("Source:       %s\n", source))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Experience:   %d companies\n", len(doc.Experience)))
	sb.WriteString(fmt.Sprintf("Education:    %d entries\n", len(doc.Education)))
	sb.WriteString(fmt.Sprintf("Projects:     %d (%d featured)\n", len(doc.Projects), len(doc.FeaturedProjects())))
	sb.WriteString(fmt.Sprintf("Testimonials: %d", len(doc.Testimonials)))

	p.printBox("PORTFOLIO DATA", sb.String())
}

// PrintTimeline outputs the first entries of a sorted timeline.
func (p *Printer) PrintTimeline(items []timeline.Item) {
	if len(items) == 0 {
		p.printBox("TIMELINE", "No entries")
		return
	}

	var sb strings.Builder
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		it := items[i]
		sb.WriteString(fmt.Sprintf("%s – %s  [%s]\n", it.StartDate, it.EndDate, it.Status))
		sb.WriteString(fmt.Sprintf("  %s\n", it.Title))
		sb.WriteString(fmt.Sprintf("  %s", it.Subtitle))
		if i < count-1 {
			sb.WriteString("\n\n")
		}
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n\n... and %d more entries", len(items)-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("TIMELINE (%d entries)", len(items)), sb.String())
}

// PrintImageGroups outputs image counts per project slug, alphabetically.
func (p *Printer) PrintImageGroups(groups map[string][]string) {
	if len(groups) == 0 {
		p.printBox("PROJECT IMAGES", "No images found")
		return
	}

	slugs := make([]string, 0, len(groups))
	total := 0
	for slug, imgs := range groups {
		slugs = append(slugs, slug)
		total += len(imgs)
	}
	sort.Strings(slugs)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d images across %d projects\n\n", total, len(slugs)))
	for i, slug := range slugs {
		sb.WriteString(fmt.Sprintf("• %-30s %3d", slug, len(groups[slug])))
		if i < len(slugs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("PROJECT IMAGES", sb.String())
}

// PrintValidationErrors outputs schema violations, one per line.
func (p *Printer) PrintValidationErrors(verr *schemas.ValidationError) {
	if verr == nil || len(verr.Errors) == 0 {
		p.printBox("SCHEMA VALIDATION", "✓ Document is valid")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✗ %d problem(s)\n\n", len(verr.Errors)))
	for i, fe := range verr.Errors {
		sb.WriteString(fmt.Sprintf("%s\n  %s", fe.Field, fe.Message))
		if i < len(verr.Errors)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VALIDATION", sb.String())
}
