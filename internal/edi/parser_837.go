package edi

import "fmt"

// Hierarchical level codes used by HL03.
const (
	hlLevelBiller     = "20"
	hlLevelSubscriber = "22"
	hlLevelPatient    = "23"
)

// NM1 entity qualifiers the 837 path cares about.
const (
	nm1Payer     = "PR"
	nm1Attending = "71"
	nm1Operating = "72"
	nm1Referring = "DN"
	nm1ReferCare = "P3"
)

func (st *parseState) handle837(seg Segment, kind segKind) {
	switch kind {
	case kindHL:
		st.pushHL(seg)
	case kindCLM:
		st.openClaim(seg)
	case kindNM1:
		st.claimNM1(seg)
	case kindDTP:
		st.claimDate(seg)
	case kindHI:
		st.claimDiagnoses(seg)
	case kindLX:
		if st.claim == nil {
			st.orphan(seg)
			return
		}
		// LX declares the next service line number; SV1/SV2 attach under it.
		if n, ok := parseAmount(seg.Element(1), seg.Tag, st.claim.ControlNumber, &st.claim.Warnings); ok && n >= 1 {
			st.lineNumber = int(n) - 1
		}
	case kindSV1, kindSV2:
		st.claimServiceLine(seg, kind)
	case kindREF, kindN1, kindTRN, kindAMT:
		// recognized but not lifted in the claim path
	default:
		// remittance-only segments inside an 837 are orphans
		st.orphan(seg)
	}
}

// pushHL maintains the explicit hierarchy stack: pop until the new entry's
// parent is on top, then push. Stack depth follows biller -> subscriber ->
// patient nesting.
func (st *parseState) pushHL(seg Segment) {
	st.flushClaim()
	if len(seg.Elements) < minElements[kindHL] {
		st.warn(shortSegmentWarning(seg, minElements[kindHL], ""))
	}
	ctx := hlContext{
		id:        seg.Element(1),
		parentID:  seg.Element(2),
		levelCode: seg.Element(3),
	}
	for len(st.hlStack) > 0 && st.hlStack[len(st.hlStack)-1].id != ctx.parentID {
		st.hlStack = st.hlStack[:len(st.hlStack)-1]
	}
	st.hlStack = append(st.hlStack, ctx)
}

// contextPayerID returns the payer identified at the nearest enclosing
// hierarchical level.
func (st *parseState) contextPayerID() string {
	for i := len(st.hlStack) - 1; i >= 0; i-- {
		if st.hlStack[i].payerID != "" {
			return st.hlStack[i].payerID
		}
	}
	return ""
}

func (st *parseState) openClaim(seg Segment) {
	st.flushClaim()

	claim := &ParsedClaim{}
	if len(seg.Elements) < minElements[kindCLM] {
		claim.IsIncomplete = true
		claim.Warnings = append(claim.Warnings, shortSegmentWarning(seg, minElements[kindCLM], seg.Element(1)))
	}

	claim.ControlNumber = seg.Element(1)
	claim.PatientControlNumber = seg.Element(1)
	if claim.ControlNumber == "" {
		claim.IsIncomplete = true
		claim.Warnings = append(claim.Warnings, Warning{
			Severity:    SeverityWarning,
			SegmentType: "CLM",
			IssueType:   IssueMissingField,
			Message:     "CLM01 claim control number is empty",
		})
	}

	if total, ok := parseAmount(seg.Element(2), "CLM", claim.ControlNumber, &claim.Warnings); ok {
		claim.TotalChargeAmount = total
		claim.HasHeaderTotal = true
	} else {
		claim.IsIncomplete = true
		if seg.Element(2) == "" {
			claim.Warnings = append(claim.Warnings, Warning{
				Severity:      SeverityWarning,
				SegmentType:   "CLM",
				IssueType:     IssueMissingField,
				Message:       "CLM02 total charge amount is missing, will derive from service lines",
				ControlNumber: claim.ControlNumber,
			})
		}
	}

	// CLM05 is a composite: facility code, qualifier, frequency code.
	if comp := splitComposite(seg.Element(5), st.delims); len(comp) > 0 {
		claim.FacilityCode = comp[0]
		if len(comp) > 2 {
			claim.FrequencyCode = comp[2]
		}
	}
	claim.AssignmentCode = seg.Element(7)
	claim.PayerID = st.contextPayerID()

	st.claim = claim
	st.lineNumber = 0
}

func (st *parseState) claimNM1(seg Segment) {
	qualifier := seg.Element(1)
	identifier := seg.Element(9)

	if st.claim == nil {
		// NM1 before CLM belongs to the hierarchical context; the payer loop
		// is the one we need for episode attribution.
		if qualifier == nm1Payer && len(st.hlStack) > 0 {
			if identifier == "" {
				identifier = seg.Element(3)
			}
			st.hlStack[len(st.hlStack)-1].payerID = identifier
		}
		return
	}

	switch qualifier {
	case nm1Attending:
		st.claim.AttendingProvider = identifier
	case nm1Operating:
		st.claim.OperatingProvider = identifier
	case nm1Referring, nm1ReferCare:
		st.claim.ReferringProvider = identifier
	case nm1Payer:
		if identifier == "" {
			identifier = seg.Element(3)
		}
		st.claim.PayerID = identifier
	}
}

// DTP qualifiers for claim-level dates.
const (
	dtpStatement = "434"
	dtpAdmission = "435"
	dtpDischarge = "096"
	dtpService   = "472"
)

func (st *parseState) claimDate(seg Segment) {
	if st.claim == nil {
		return
	}
	if len(seg.Elements) < minElements[kindDTP] {
		st.claim.Warnings = append(st.claim.Warnings, shortSegmentWarning(seg, minElements[kindDTP], st.claim.ControlNumber))
		return
	}
	value := seg.Element(3)
	switch seg.Element(1) {
	case dtpStatement:
		from, to := parseDateRange(value, "DTP", st.claim.ControlNumber, &st.claim.Warnings)
		st.claim.StatementDate = from
		if to != nil && st.claim.DischargeDate == nil {
			st.claim.DischargeDate = to
		}
	case dtpAdmission:
		st.claim.AdmissionDate = parseDate(value, "DTP", st.claim.ControlNumber, &st.claim.Warnings)
	case dtpDischarge:
		st.claim.DischargeDate = parseDate(value, "DTP", st.claim.ControlNumber, &st.claim.Warnings)
	case dtpService:
		d := parseDate(value, "DTP", st.claim.ControlNumber, &st.claim.Warnings)
		if len(st.claim.Lines) > 0 {
			line := &st.claim.Lines[len(st.claim.Lines)-1]
			if line.ServiceDate == nil {
				line.ServiceDate = d
				return
			}
		}
		if st.claim.ServiceDate == nil {
			st.claim.ServiceDate = d
		}
	}
}

// claimDiagnoses lifts HI composites: "ABK:code" marks the principal
// diagnosis, "ABF:code" additional ones.
func (st *parseState) claimDiagnoses(seg Segment) {
	if st.claim == nil {
		st.orphan(seg)
		return
	}
	for _, el := range seg.Elements {
		comp := splitComposite(el, st.delims)
		if len(comp) < 2 || comp[1] == "" {
			continue
		}
		code := comp[1]
		st.claim.DiagnosisCodes = append(st.claim.DiagnosisCodes, code)
		if (comp[0] == "ABK" || comp[0] == "BK") && st.claim.PrincipalDiagnosis == "" {
			st.claim.PrincipalDiagnosis = code
		}
	}
	if st.claim.PrincipalDiagnosis == "" && len(st.claim.DiagnosisCodes) > 0 {
		st.claim.PrincipalDiagnosis = st.claim.DiagnosisCodes[0]
	}
}

func (st *parseState) claimServiceLine(seg Segment, kind segKind) {
	if st.claim == nil {
		st.orphan(seg)
		return
	}
	if len(seg.Elements) < minElements[kind] {
		st.claim.IsIncomplete = true
		st.claim.Warnings = append(st.claim.Warnings, shortSegmentWarning(seg, minElements[kind], st.claim.ControlNumber))
	}

	st.lineNumber++
	line := ParsedClaimLine{LineNumber: st.lineNumber}

	switch kind {
	case kindSV1:
		// SV101 composite: qualifier:procedure:modifier
		if comp := splitComposite(seg.Element(1), st.delims); len(comp) > 1 {
			line.ProcedureCode = comp[1]
			if len(comp) > 2 {
				line.Modifier = comp[2]
			}
		}
		line.ChargeAmount, _ = parseAmount(seg.Element(2), "SV1", st.claim.ControlNumber, &st.claim.Warnings)
		line.UnitType = seg.Element(3)
		line.UnitCount, _ = parseAmount(seg.Element(4), "SV1", st.claim.ControlNumber, &st.claim.Warnings)
	case kindSV2:
		// institutional line: SV201 revenue code, SV202 procedure composite,
		// SV203 charge
		line.RevenueCode = seg.Element(1)
		if comp := splitComposite(seg.Element(2), st.delims); len(comp) > 1 {
			line.ProcedureCode = comp[1]
			if len(comp) > 2 {
				line.Modifier = comp[2]
			}
		}
		line.ChargeAmount, _ = parseAmount(seg.Element(3), "SV2", st.claim.ControlNumber, &st.claim.Warnings)
		line.UnitType = seg.Element(4)
		line.UnitCount, _ = parseAmount(seg.Element(5), "SV2", st.claim.ControlNumber, &st.claim.Warnings)
	}

	st.claim.Lines = append(st.claim.Lines, line)
}

func (st *parseState) flushClaim() {
	if st.claim == nil {
		return
	}
	st.result.Claims = append(st.result.Claims, *st.claim)
	st.claim = nil
	st.lineNumber = 0
}

func (st *parseState) orphan(seg Segment) {
	st.warn(Warning{
		Severity:    SeverityWarning,
		SegmentType: seg.Tag,
		IssueType:   IssueOrphanSegment,
		Message:     fmt.Sprintf("%s segment outside of its expected loop, skipped", seg.Tag),
	})
}
