package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ppiankov/impactlens/internal/model"
)

// utf8BOM lets spreadsheet tools detect the encoding
const utf8BOM = "\ufeff"

// csvHeader is the export column order
var csvHeader = []string{
	"Company",
	"Overall",
	"Build (35%)",
	"Thrive (35%)",
	"Sustain (20%)",
	"Keystone (10%)",
	"Tier",
	"Local Connection",
	"Data %",
}

// WriteCSV writes one row per result with formula-injection escaping
func WriteCSV(w io.Writer, results []model.EntityResult) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Name,
			fmt.Sprintf("%.1f", r.Overall),
			fmt.Sprintf("%.1f", float64(r.Categories.Build)),
			fmt.Sprintf("%.1f", float64(r.Categories.Thrive)),
			fmt.Sprintf("%.1f", float64(r.Categories.Sustain)),
			fmt.Sprintf("%.1f", float64(r.Categories.Keystone)),
			string(r.Tier),
			r.LocalLabel,
			strconv.Itoa(r.DataAvailability),
		}
		for i := range row {
			row[i] = EscapeCell(row[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EscapeCell prefixes cells that a spreadsheet would evaluate as a formula
func EscapeCell(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', ';':
		return "'" + cell
	}
	return cell
}
