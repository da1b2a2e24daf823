package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// WriteSummary prints a human-readable summary of one result
func WriteSummary(w io.Writer, r *model.EntityResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "  %s\n", r.Name)
	fmt.Fprintf(&b, "%s\n\n", rule)

	if r.OfficialSite != "" {
		fmt.Fprintf(&b, "  Official site:     %s\n", r.OfficialSite)
	}
	fmt.Fprintf(&b, "  Overall:           %.1f/100 (%s)\n", r.Overall, r.Tier)
	fmt.Fprintf(&b, "  Local connection:  %s\n", r.LocalLabel)
	fmt.Fprintf(&b, "  Data availability: %d%%\n\n", r.DataAvailability)

	fmt.Fprintf(&b, "  Build:    %3d   Thrive:   %3d\n", r.Categories.Build, r.Categories.Thrive)
	fmt.Fprintf(&b, "  Sustain:  %3d   Keystone: %3d\n\n", r.Categories.Sustain, r.Categories.Keystone)

	for _, f := range r.Factors {
		if f.Score == 0 {
			continue
		}
		marker := ""
		if f.Overridden {
			marker = " (override)"
		}
		fmt.Fprintf(&b, "  ✓ %-9s %-34s %3d%s\n", f.Category, f.FactorName, f.Score, marker)
		for _, c := range f.Citations {
			fmt.Fprintf(&b, "      - %s\n", c.URL)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
