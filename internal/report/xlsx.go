// Package report renders denial pattern reports as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"claimsight/internal/domain"
)

const patternSheet = "Denial Patterns"

var patternColumns = []string{
	"Payer ID",
	"Pattern Type",
	"Reason Code",
	"Condition",
	"Description",
	"Occurrences",
	"Episodes Scanned",
	"Frequency",
	"Confidence",
	"First Seen",
	"Last Seen",
}

// WritePatternsXLSX renders the denial patterns as an Excel workbook and
// writes it to w.
func WritePatternsXLSX(w io.Writer, patterns []domain.DenialPattern) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), patternSheet); err != nil {
		return fmt.Errorf("report.WritePatternsXLSX: %w", err)
	}

	for col, name := range patternColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("report.WritePatternsXLSX: %w", err)
		}
		if err := f.SetCellValue(patternSheet, cell, name); err != nil {
			return fmt.Errorf("report.WritePatternsXLSX: %w", err)
		}
	}

	for i := range patterns {
		p := &patterns[i]
		values := []interface{}{
			p.PayerID,
			string(p.PatternType),
			p.ReasonCode,
			p.ConditionKey,
			p.Description,
			p.OccurrenceCount,
			p.EpisodesTotal,
			p.Frequency,
			p.ConfidenceScore,
			p.FirstSeenAt.Format(time.RFC3339),
			p.LastSeenAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("report.WritePatternsXLSX: %w", err)
			}
			if err := f.SetCellValue(patternSheet, cell, v); err != nil {
				return fmt.Errorf("report.WritePatternsXLSX: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report.WritePatternsXLSX: %w", err)
	}
	return nil
}
