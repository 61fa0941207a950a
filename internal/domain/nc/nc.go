// Package nc holds the non-conformance domain: the closed status/severity
// enumerations, the comment tag set, and the effectiveness-check scheduling rule.
package nc

// Status is the investigation lifecycle state. Transitions are unrestricted:
// any status may move to any other, including re-opening a closed record.
type Status string

const (
	StatusOpen               Status = "Open"
	StatusUnderInvestigation Status = "Under Investigation"
	StatusActionRequired     Status = "Action Required"
	StatusClosed             Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusUnderInvestigation, StatusActionRequired, StatusClosed:
		return true
	default:
		return false
	}
}

// Severity is descriptive only; no escalation behavior hangs off it.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// CommentTag classifies an investigation note.
type CommentTag string

const (
	TagContainmentAction CommentTag = "Containment Action"
	TagRootCauseFinding  CommentTag = "Root Cause Finding"
	TagCorrectiveAction  CommentTag = "Corrective Action"
	TagVerification      CommentTag = "Verification"
	TagGeneralNote       CommentTag = "General Note"
)

func (t CommentTag) Valid() bool {
	switch t {
	case TagContainmentAction, TagRootCauseFinding, TagCorrectiveAction, TagVerification, TagGeneralNote:
		return true
	default:
		return false
	}
}

// DefaultType is the record classification applied when none is supplied.
const DefaultType = "NC"
