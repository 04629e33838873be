package domain

// RuleKind is the admissibility of a rule's window. Kept as a string
// so stored rule JSON matches what clients already expect.
type RuleKind string

const (
	RuleAllowed RuleKind = "allowed"
	RuleDenied  RuleKind = "notAllowed"
)

// ParkingRule is one admissibility window extracted from a sign.
// StartTime/EndTime are minute-resolution "HH:MM" strings in 24-hour
// form; EndTime may be lexically smaller than StartTime for windows
// that cross midnight. Rules are never mutated after construction.
type ParkingRule struct {
	Type            RuleKind `json:"type"`
	Days            []string `json:"days"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	Description     string   `json:"description"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
}

// RuleSet is the ordered output of the rule extractor. Order matters:
// the evaluator takes the first matching rule per kind.
type RuleSet struct {
	Rules    []ParkingRule `json:"rules"`
	SignText string        `json:"signText"`
}

// AnalysisResult is the evaluator's verdict for one sign at one instant.
type AnalysisResult struct {
	IsAllowed     bool          `json:"isAllowed"`
	TimeRemaining string        `json:"timeRemaining,omitempty"`
	CurrentTime   string        `json:"currentTime"`
	Date          string        `json:"date"`
	StartTime     string        `json:"startTime,omitempty"`
	EndTime       string        `json:"endTime,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Rules         []ParkingRule `json:"rules"`
	SignText      string        `json:"signText"`
}
