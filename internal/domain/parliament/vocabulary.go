package parliament

import (
	"fmt"
	"sort"
	"strings"
)

type AlertType string

const (
	AlertStatusChange       AlertType = "status_change"
	AlertCommitteeScheduled AlertType = "committee_scheduled"
	AlertDebateScheduled    AlertType = "debate_scheduled"
	AlertNewDocument        AlertType = "new_document"
	AlertVoteResult         AlertType = "vote_result"
)

var alertTypes = []AlertType{
	AlertStatusChange,
	AlertCommitteeScheduled,
	AlertDebateScheduled,
	AlertNewDocument,
	AlertVoteResult,
}

// DefaultNotifyAlertTypes is the subset a new user receives by email.
var DefaultNotifyAlertTypes = []AlertType{AlertStatusChange, AlertCommitteeScheduled, AlertDebateScheduled}

func AlertTypes() []AlertType {
	out := make([]AlertType, len(alertTypes))
	copy(out, alertTypes)
	return out
}

func ParseAlertType(raw string) (AlertType, error) {
	candidate := AlertType(strings.TrimSpace(raw))
	for _, t := range alertTypes {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAlertType, raw)
}

// IsScheduled reports alert types that refer to a future committee or plenary date.
func (t AlertType) IsScheduled() bool {
	return t == AlertCommitteeScheduled || t == AlertDebateScheduled
}

// ParseAlertTypeSet reads the comma separated subset stored per user.
// Unknown entries are ignored.
func ParseAlertTypeSet(csv string) map[AlertType]struct{} {
	out := make(map[AlertType]struct{})
	for _, part := range strings.Split(csv, ",") {
		if t, err := ParseAlertType(part); err == nil {
			out[t] = struct{}{}
		}
	}
	return out
}

func FormatAlertTypeSet(types []AlertType) string {
	seen := make(map[AlertType]struct{}, len(types))
	parts := make([]string, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		parts = append(parts, string(t))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

type EventType string

const (
	EventStatusChange       EventType = "status_change"
	EventCommitteeScheduled EventType = "committee_scheduled"
	EventDebateScheduled    EventType = "debate_scheduled"
)

// Decision values stored on a Voting row.
const (
	DecisionYes        = "Yes"
	DecisionNo         = "No"
	DecisionAbstention = "Abstention"
	DecisionAbsent     = "Absent"
	DecisionPresident  = "President"
)

var decisionLabels = map[string]string{
	"Ja":                            DecisionYes,
	"Nein":                          DecisionNo,
	"Enthaltung":                    DecisionAbstention,
	"Entschuldigt":                  DecisionAbsent,
	"Hat nicht teilgenommen":        DecisionAbsent,
	"Die Präsidentin/Der Präsident": DecisionPresident,
}

// NormalizeDecision maps an upstream ballot label onto the closed vocabulary.
// Labels missing from the table are returned verbatim.
func NormalizeDecision(label string) string {
	trimmed := strings.TrimSpace(label)
	if mapped, ok := decisionLabels[trimmed]; ok {
		return mapped
	}
	return trimmed
}
