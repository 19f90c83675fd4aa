package edi

// Segment is one tag-delimited record of an EDI document. Elements holds the
// data elements after the tag, in source order.
type Segment struct {
	Tag      string
	Elements []string
}

// Element returns the 1-based data element (CLM01 is Element(1)), or "" when
// the segment is short.
func (s Segment) Element(n int) string {
	if n < 1 || n > len(s.Elements) {
		return ""
	}
	return s.Elements[n-1]
}

// segKind enumerates the segment tags the parser understands. Dispatch is a
// closed switch over these kinds with kindUnknown as the fallback, so a new
// segment type is a compile-checked addition here and in the parser switch.
type segKind int

const (
	kindUnknown segKind = iota
	kindISA
	kindGS
	kindST
	kindSE
	kindGE
	kindIEA
	kindBHT
	kindHL
	kindNM1
	kindN1
	kindREF
	kindDTP
	kindCLM
	kindHI
	kindLX
	kindSV1
	kindSV2
	kindBPR
	kindTRN
	kindCLP
	kindCAS
	kindAMT
)

func kindOf(tag string) segKind {
	switch tag {
	case "ISA":
		return kindISA
	case "GS":
		return kindGS
	case "ST":
		return kindST
	case "SE":
		return kindSE
	case "GE":
		return kindGE
	case "IEA":
		return kindIEA
	case "BHT":
		return kindBHT
	case "HL":
		return kindHL
	case "NM1":
		return kindNM1
	case "N1":
		return kindN1
	case "REF":
		return kindREF
	case "DTP":
		return kindDTP
	case "CLM":
		return kindCLM
	case "HI":
		return kindHI
	case "LX":
		return kindLX
	case "SV1":
		return kindSV1
	case "SV2":
		return kindSV2
	case "BPR":
		return kindBPR
	case "TRN":
		return kindTRN
	case "CLP":
		return kindCLP
	case "CAS":
		return kindCAS
	case "AMT":
		return kindAMT
	default:
		return kindUnknown
	}
}

// minElements is the minimum data element count a segment needs before its
// required fields start defaulting to empty. Falling short is a warning, not
// a rejection.
var minElements = map[segKind]int{
	kindST:  2,
	kindHL:  3,
	kindCLM: 2,
	kindSV1: 2,
	kindSV2: 3,
	kindBPR: 2,
	kindTRN: 2,
	kindCLP: 4,
	kindCAS: 3,
	kindDTP: 3,
	kindHI:  1,
	kindNM1: 1,
	kindN1:  2,
}
