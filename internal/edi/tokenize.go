package edi

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Delimiters are the sender-specific separators declared by the interchange
// header. They are read from the ISA segment, never assumed.
type Delimiters struct {
	Element   byte
	Component byte
	Segment   byte
}

// FatalError means the document could not be tokenized at all. It is the only
// error kind Parse returns; data-quality issues surface as warnings instead.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return "edi: " + e.Reason
}

// IsFatal reports whether err is a FatalError from this package.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// isaElementCount is the fixed number of data elements in an ISA segment.
// ISA16 is the component separator; the byte after it terminates segments.
const isaElementCount = 16

// readDelimiters extracts the element, component, and segment separators from
// the ISA header.
func readDelimiters(doc string) (Delimiters, error) {
	if len(doc) < 4 || !strings.HasPrefix(doc, "ISA") {
		return Delimiters{}, &FatalError{Reason: "document does not start with an ISA interchange header"}
	}

	d := Delimiters{Element: doc[3]}

	// Walk to the 16th element separator. ISA16 is a single character
	// (the component separator) and the next byte is the segment terminator.
	seps := 0
	for i := 3; i < len(doc); i++ {
		if doc[i] != d.Element {
			continue
		}
		seps++
		if seps == isaElementCount {
			if i+2 >= len(doc) {
				return Delimiters{}, &FatalError{Reason: "interchange header is truncated"}
			}
			d.Component = doc[i+1]
			d.Segment = doc[i+2]
			return d, nil
		}
	}
	return Delimiters{}, &FatalError{Reason: fmt.Sprintf("interchange header has %d of %d elements", seps, isaElementCount)}
}

// tokenize splits a raw document into segments using the delimiters declared
// in its ISA header. It fails only for envelope-level problems.
func tokenize(doc string) ([]Segment, Delimiters, error) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil, Delimiters{}, &FatalError{Reason: "empty document"}
	}
	if !utf8.ValidString(doc) {
		return nil, Delimiters{}, &FatalError{Reason: "document is not valid UTF-8"}
	}

	delims, err := readDelimiters(doc)
	if err != nil {
		return nil, Delimiters{}, err
	}

	raw := strings.Split(doc, string(delims.Segment))
	segments := make([]Segment, 0, len(raw))
	sawIEA := false
	for _, r := range raw {
		r = strings.Trim(r, "\r\n \t")
		if r == "" {
			continue
		}
		parts := strings.Split(r, string(delims.Element))
		seg := Segment{Tag: parts[0], Elements: parts[1:]}
		if seg.Tag == "IEA" {
			sawIEA = true
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return nil, Delimiters{}, &FatalError{Reason: "document contains no segments"}
	}
	if !sawIEA {
		return nil, Delimiters{}, &FatalError{Reason: "interchange is missing its IEA trailer"}
	}
	return segments, delims, nil
}

// splitComposite splits a composite element into its sub-elements.
func splitComposite(value string, delims Delimiters) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, string(delims.Component))
}
