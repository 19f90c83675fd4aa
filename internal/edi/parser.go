// Package edi parses X12 837 (claim) and 835 (remittance) documents into raw
// claim and payment records. Data-quality problems are collected as warnings;
// the only hard failure is a document that cannot be tokenized at all.
package edi

import (
	"fmt"
)

// transaction modes driven by the ST01 element.
type txMode int

const (
	modeNone txMode = iota
	mode837
	mode835
	modeSkip
)

// parseState is the rolling state carried through the segment loop. One value
// holds everything; nothing global.
type parseState struct {
	delims Delimiters
	result *ParseResult

	mode    txMode
	hlStack []hlContext

	claim      *ParsedClaim
	lineNumber int

	batch *PaymentBatch
	remit *ParsedRemittance
	// claim payments seen in the current 835 transaction, used to derive a
	// remittance control number when the payer omits CLP07.
	clpIndex int
}

// hlContext is one entry of the 837 hierarchical level stack
// (biller -> subscriber -> patient).
type hlContext struct {
	id        string
	parentID  string
	levelCode string
	payerID   string
}

// Parse tokenizes document and walks its segments, producing all claims and
// remittances found across the enclosed transaction sets. It never returns an
// error for data-quality issues; those are recorded as warnings on the result
// or on the affected record. A *FatalError is returned only when the document
// has no parseable envelope.
func Parse(document, sourceName string) (*ParseResult, error) {
	segments, delims, err := tokenize(document)
	if err != nil {
		return nil, err
	}

	st := &parseState{
		delims: delims,
		result: &ParseResult{SourceName: sourceName},
	}

	for _, seg := range segments {
		st.handle(seg)
	}
	st.flushTransaction()

	return st.result, nil
}

func (st *parseState) handle(seg Segment) {
	kind := kindOf(seg.Tag)

	switch kind {
	case kindISA, kindGS, kindGE, kindIEA, kindBHT:
		// envelope bookkeeping, nothing to lift
		return
	case kindST:
		st.flushTransaction()
		st.startTransaction(seg)
		return
	case kindSE:
		st.flushTransaction()
		return
	case kindUnknown:
		st.warn(Warning{
			Severity:    SeverityInfo,
			SegmentType: seg.Tag,
			IssueType:   IssueUnknownSegment,
			Message:     fmt.Sprintf("unrecognized segment %q skipped", seg.Tag),
		})
		return
	}

	switch st.mode {
	case mode837:
		st.handle837(seg, kind)
	case mode835:
		st.handle835(seg, kind)
	case modeSkip, modeNone:
		// inside an unsupported or unopened transaction set
	}
}

func (st *parseState) startTransaction(seg Segment) {
	if len(seg.Elements) < minElements[kindST] {
		st.result.Warnings = append(st.result.Warnings, shortSegmentWarning(seg, minElements[kindST], ""))
	}
	switch seg.Element(1) {
	case "837":
		st.mode = mode837
	case "835":
		st.mode = mode835
		st.batch = &PaymentBatch{}
		st.clpIndex = 0
	default:
		st.mode = modeSkip
		st.warn(Warning{
			Severity:    SeverityWarning,
			SegmentType: "ST",
			IssueType:   IssueUnsupportedTransaction,
			Message:     fmt.Sprintf("transaction set %q is not supported, skipping to SE", seg.Element(1)),
		})
	}
}

// flushTransaction closes any open claim/remittance context at an ST or SE
// boundary.
func (st *parseState) flushTransaction() {
	st.flushClaim()
	st.flushRemittance()
	if st.batch != nil {
		st.result.Batches = append(st.result.Batches, *st.batch)
		st.batch = nil
	}
	st.mode = modeNone
	st.hlStack = nil
	st.lineNumber = 0
}

// warn records a document-level warning, or attaches it to the open record
// when one exists.
func (st *parseState) warn(w Warning) {
	switch {
	case st.claim != nil:
		if w.ControlNumber == "" {
			w.ControlNumber = st.claim.ControlNumber
		}
		st.claim.Warnings = append(st.claim.Warnings, w)
	case st.remit != nil:
		if w.ControlNumber == "" {
			w.ControlNumber = st.remit.ClaimControlNumber
		}
		st.remit.Warnings = append(st.remit.Warnings, w)
	default:
		st.result.Warnings = append(st.result.Warnings, w)
	}
}
