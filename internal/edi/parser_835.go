package edi

import "fmt"

func (st *parseState) handle835(seg Segment, kind segKind) {
	switch kind {
	case kindBPR:
		st.paymentBatch(seg)
	case kindTRN:
		if len(seg.Elements) < minElements[kindTRN] {
			st.warn(shortSegmentWarning(seg, minElements[kindTRN], ""))
		}
		if st.batch != nil {
			st.batch.CheckNumber = seg.Element(2)
		}
	case kindN1:
		st.payerIdentification(seg)
	case kindCLP:
		st.openClaimPayment(seg)
	case kindCAS:
		st.claimAdjustment(seg)
	case kindNM1, kindREF, kindDTP, kindAMT, kindLX:
		// recognized but not lifted in the payment path
	default:
		st.orphan(seg)
	}
}

// paymentBatch lifts the BPR segment into the transaction-wide payment
// context: total amount, method, and issue date.
func (st *parseState) paymentBatch(seg Segment) {
	if st.batch == nil {
		st.batch = &PaymentBatch{}
	}
	if len(seg.Elements) < minElements[kindBPR] {
		st.warn(shortSegmentWarning(seg, minElements[kindBPR], ""))
	}
	var warnings []Warning
	st.batch.TotalPaymentAmount, _ = parseAmount(seg.Element(2), "BPR", "", &warnings)
	st.batch.PaymentMethod = seg.Element(4)
	st.batch.PaymentDate = parseDate(seg.Element(16), "BPR", "", &warnings)
	st.result.Warnings = append(st.result.Warnings, warnings...)
}

// payerIdentification lifts N1*PR into the batch context. Every CLP that
// follows inherits it.
func (st *parseState) payerIdentification(seg Segment) {
	if seg.Element(1) != "PR" || st.batch == nil {
		return
	}
	st.batch.PayerName = seg.Element(2)
	if id := seg.Element(4); id != "" {
		st.batch.PayerID = id
	} else if st.batch.PayerID == "" {
		st.batch.PayerID = st.batch.PayerName
	}
}

// Claim payment status codes (CLP02). 1-3 are processed payments, 4 is a
// denial; higher codes are interim states like reversals and forwards.
func statusIsFinal(code string) bool {
	switch code {
	case "1", "2", "3", "4":
		return true
	default:
		return false
	}
}

func (st *parseState) openClaimPayment(seg Segment) {
	st.flushRemittance()
	st.clpIndex++

	remit := &ParsedRemittance{}
	if len(seg.Elements) < minElements[kindCLP] {
		remit.IsIncomplete = true
		remit.Warnings = append(remit.Warnings, shortSegmentWarning(seg, minElements[kindCLP], seg.Element(1)))
	}

	remit.ClaimControlNumber = seg.Element(1)
	if remit.ClaimControlNumber == "" {
		remit.IsIncomplete = true
		remit.Warnings = append(remit.Warnings, Warning{
			Severity:    SeverityWarning,
			SegmentType: "CLP",
			IssueType:   IssueMissingField,
			Message:     "CLP01 claim control number is empty",
		})
	}
	remit.StatusCode = seg.Element(2)
	remit.IsFinal = statusIsFinal(remit.StatusCode)
	remit.ChargeAmount, _ = parseAmount(seg.Element(3), "CLP", remit.ClaimControlNumber, &remit.Warnings)
	remit.PaymentAmount, _ = parseAmount(seg.Element(4), "CLP", remit.ClaimControlNumber, &remit.Warnings)

	// CLP07 is the payer's internal control number; when absent, derive a
	// stable identity from the check number so idempotent re-linking works.
	remit.ControlNumber = seg.Element(7)
	if st.batch != nil {
		remit.PayerID = st.batch.PayerID
		remit.PayerName = st.batch.PayerName
		remit.CheckNumber = st.batch.CheckNumber
		remit.PaymentDate = st.batch.PaymentDate
		remit.PaymentMethod = st.batch.PaymentMethod
	}
	if remit.ControlNumber == "" {
		remit.ControlNumber = fmt.Sprintf("%s-%d", remit.CheckNumber, st.clpIndex)
	}

	st.remit = remit
}

// claimAdjustment lifts a CAS segment: a group code followed by repeating
// (reason, amount, quantity) triplets. Every triplet is kept; duplicates are
// meaningful downstream.
func (st *parseState) claimAdjustment(seg Segment) {
	if st.remit == nil {
		st.orphan(seg)
		return
	}
	if len(seg.Elements) < minElements[kindCAS] {
		st.remit.IsIncomplete = true
		st.remit.Warnings = append(st.remit.Warnings, shortSegmentWarning(seg, minElements[kindCAS], st.remit.ClaimControlNumber))
		return
	}

	group := seg.Element(1)
	for i := 2; i <= len(seg.Elements); i += 3 {
		reason := seg.Element(i)
		if reason == "" {
			continue
		}
		amount, _ := parseAmount(seg.Element(i+1), "CAS", st.remit.ClaimControlNumber, &st.remit.Warnings)
		quantity, _ := parseAmount(seg.Element(i+2), "CAS", st.remit.ClaimControlNumber, &st.remit.Warnings)
		st.remit.Adjustments = append(st.remit.Adjustments, ParsedAdjustment{
			GroupCode:  group,
			ReasonCode: reason,
			Amount:     amount,
			Quantity:   quantity,
		})
		if group == "CO" || group == "PR" || st.remit.StatusCode == "4" {
			st.remit.DenialReasonCodes = append(st.remit.DenialReasonCodes, reason)
		}
	}
}

func (st *parseState) flushRemittance() {
	if st.remit == nil {
		return
	}
	st.result.Remittances = append(st.result.Remittances, *st.remit)
	st.remit = nil
}
