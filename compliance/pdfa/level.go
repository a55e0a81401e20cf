package pdfa

// Level represents a PDF/A conformance level.
type Level int

const (
	PDFA1B Level = iota
	PDFA2B
	PDFA2U
	PDFA3B
	PDFA3U
	PDFA4
	PDFA4E
	PDFA4F
)

func (l Level) String() string {
	switch l {
	case PDFA1B:
		return "PDF/A-1b"
	case PDFA2B:
		return "PDF/A-2b"
	case PDFA2U:
		return "PDF/A-2u"
	case PDFA3B:
		return "PDF/A-3b"
	case PDFA3U:
		return "PDF/A-3u"
	case PDFA4:
		return "PDF/A-4"
	case PDFA4E:
		return "PDF/A-4e"
	case PDFA4F:
		return "PDF/A-4f"
	default:
		return "Unknown"
	}
}

// IsLevelA1 returns true if the level is PDF/A-1.
func (l Level) IsLevelA1() bool {
	return l == PDFA1B
}
