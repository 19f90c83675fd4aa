package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"claimsight/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Control Number",
	"Payer ID",
	"Status",
	"Charge Amount",
	"Payment Amount",
	"Adjustment Amount",
	"Balance",
	"Remittance Count",
	"Adjustment Count",
	"Denial Count",
	"Linked At",
	"Completed At",
	"Created At",
}

// Writer wraps csv.Writer for exporting claim episodes as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteEpisodes converts a batch of episodes to CSV rows and writes them.
func (w *Writer) WriteEpisodes(episodes []domain.ClaimEpisode) error {
	for i := range episodes {
		row := episodeToRow(&episodes[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func episodeToRow(ep *domain.ClaimEpisode) []string {
	row := make([]string, len(columns))
	row[0] = ep.ControlNumber
	row[1] = ep.PayerID
	row[2] = string(ep.Status)
	row[3] = formatMoney(ep.ChargeAmount)
	row[4] = formatMoney(ep.PaymentAmount)
	row[5] = formatMoney(ep.AdjustmentAmount)
	row[6] = formatMoney(ep.ChargeAmount - ep.PaymentAmount - ep.AdjustmentAmount)
	row[7] = strconv.Itoa(ep.RemittanceCount)
	row[8] = strconv.Itoa(ep.AdjustmentCount)
	row[9] = strconv.Itoa(ep.DenialCount)
	row[10] = formatTime(ep.LinkedAt)
	row[11] = formatTime(ep.CompletedAt)
	row[12] = ep.CreatedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
