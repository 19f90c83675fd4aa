package edi

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseAmount coerces a monetary element to float64. Failures record a
// warning and yield 0 so one bad amount never aborts a batch.
func parseAmount(value, segTag, controlNumber string, warnings *[]Warning) (float64, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		*warnings = append(*warnings, Warning{
			Severity:      SeverityWarning,
			SegmentType:   segTag,
			IssueType:     IssueBadNumber,
			Message:       fmt.Sprintf("cannot parse %q as an amount, defaulting to 0", value),
			ControlNumber: controlNumber,
		})
		return 0, false
	}
	return f, true
}

// edi date formats: D8 is CCYYMMDD, RD8 is CCYYMMDD-CCYYMMDD.
const dateLayout = "20060102"

// parseDate coerces a DTP-style date element. RD8 ranges return the range
// start; callers that want the end use parseDateRange.
func parseDate(value, segTag, controlNumber string, warnings *[]Warning) *time.Time {
	from, _ := parseDateRange(value, segTag, controlNumber, warnings)
	return from
}

func parseDateRange(value, segTag, controlNumber string, warnings *[]Warning) (from, to *time.Time) {
	if value == "" {
		return nil, nil
	}
	start := value
	end := ""
	if i := strings.IndexByte(value, '-'); i >= 0 {
		start, end = value[:i], value[i+1:]
	}
	t, err := time.Parse(dateLayout, start)
	if err != nil {
		*warnings = append(*warnings, Warning{
			Severity:      SeverityWarning,
			SegmentType:   segTag,
			IssueType:     IssueBadDate,
			Message:       fmt.Sprintf("cannot parse %q as a date", value),
			ControlNumber: controlNumber,
		})
		return nil, nil
	}
	from = &t
	if end != "" {
		if t2, err := time.Parse(dateLayout, end); err == nil {
			to = &t2
		}
	}
	return from, to
}

func shortSegmentWarning(seg Segment, want int, controlNumber string) Warning {
	return Warning{
		Severity:      SeverityWarning,
		SegmentType:   seg.Tag,
		IssueType:     IssueShortSegment,
		Message:       fmt.Sprintf("%s segment has %d elements, expected at least %d; missing fields defaulted", seg.Tag, len(seg.Elements), want),
		ControlNumber: controlNumber,
	}
}
