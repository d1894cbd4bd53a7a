package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vietdv277/keyrot/internal/rotate"
	"github.com/vietdv277/keyrot/pkg/types"
)

// cell is one rendered table cell
type cell struct {
	text  string
	style lipgloss.Style
}

// table renders rows in a styled box table
type table struct {
	headers []string
	widths  []int
	rows    [][]cell
}

func newTable(headers []string, widths []int) *table {
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) border(left, mid, right string) string {
	var sb strings.Builder
	sb.WriteString(BorderStyle.Render(left))
	for i, w := range t.widths {
		sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
		if i < len(t.widths)-1 {
			sb.WriteString(BorderStyle.Render(mid))
		}
	}
	sb.WriteString(BorderStyle.Render(right))
	sb.WriteString("\n")
	return sb.String()
}

func (t *table) String() string {
	var sb strings.Builder

	sb.WriteString(t.border(TopLeft, TopT, TopRight))

	// Header row
	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range t.headers {
		sb.WriteString(HeaderStyle.Render(" " + padRight(h, t.widths[i]) + " "))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	sb.WriteString(t.border(LeftT, Cross, RightT))

	// Data rows
	for _, row := range t.rows {
		sb.WriteString(BorderStyle.Render(Vertical))
		for i, c := range row {
			sb.WriteString(" ")
			sb.WriteString(c.style.Render(padRight(c.text, t.widths[i])))
			sb.WriteString(" ")
			sb.WriteString(BorderStyle.Render(Vertical))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(t.border(BottomLeft, BottomT, BottomRight))
	return sb.String()
}

// PrintProfileTable prints rotation candidates with their key age
func PrintProfileTable(w io.Writer, profiles []types.Profile, now time.Time) {
	t := newTable([]string{"Profile", "Access Key ID", "Created", "Age"}, []int{24, 22, 20, 8})

	for _, p := range profiles {
		created := "-"
		if p.CreateDate != nil {
			created = p.CreateDate.Local().Format("2006-01-02 15:04")
		}
		t.addRow(
			cell{p.Name, NameStyle},
			cell{p.AccessKeyID, KeyStyle},
			cell{created, MutedStyle},
			cell{FormatAge(p, now), ageStyle(p, now)},
		)
	}

	fmt.Fprint(w, t.String())
	fmt.Fprintf(w, "\n  Total: %d profile(s)\n", len(profiles))
}

// PrintRotationReport prints the outcome of a run. New secrets are only
// printed when showKeys is set.
func PrintRotationReport(w io.Writer, report *rotate.Report, showKeys bool) {
	switch report.Status {
	case rotate.StatusNothingToRotate:
		fmt.Fprintln(w, MutedStyle.Render("Nothing to rotate"))
		return

	case rotate.StatusCancelled:
		fmt.Fprintln(w, MutedStyle.Render("Cancelled, nothing was changed"))
		return

	case rotate.StatusDryRun:
		fmt.Fprintln(w, HeaderStyle.Render("Dry run, the following profiles would be rotated:"))
		for _, p := range report.Selected {
			fmt.Fprintf(w, "  %s  %s\n", NameStyle.Render(p.Name), KeyStyle.Render(p.AccessKeyID))
		}
		if len(report.Selected) == 1 {
			fmt.Fprintln(w, HintStyle.Render("  env file and secret mirror apply"))
		}
		return
	}

	if showKeys && len(report.Rotated) > 0 {
		t := newTable([]string{"Profile", "Access Key ID", "Secret Access Key"}, []int{20, 22, 42})
		for _, r := range report.Rotated {
			t.addRow(
				cell{r.Name, NameStyle},
				cell{r.NewAccessKeyID, KeyStyle},
				cell{r.NewSecretAccessKey, lipgloss.NewStyle()},
			)
		}
		fmt.Fprint(w, t.String())
	}

	summary := fmt.Sprintf("Rotated %d of %d profile(s)", len(report.Rotated), len(report.Selected))
	if len(report.Rotated) == len(report.Selected) {
		fmt.Fprintln(w, SuccessStyle.Render(summary))
	} else {
		fmt.Fprintln(w, WarnStyle.Render(summary))
	}

	for _, r := range report.Rotated {
		if r.Installed() {
			continue
		}
		fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("  credentials of %s were not updated, new key %s is active: %v", r.Name, r.NewAccessKeyID, r.InstallErr)))
		if !showKeys {
			fmt.Fprintln(w, HintStyle.Render("  its secret was not printed, use -o to see new keys on future runs"))
		}
	}

	for _, d := range report.Deleted {
		if !d.OK() {
			fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("  old key %s of %s is still active: %v", d.AccessKeyID, d.Name, d.Err)))
		}
	}
}
