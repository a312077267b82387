package parliament

import (
	"fmt"
	"strings"
)

type CandidateDecision string

const (
	CandidatePending  CandidateDecision = "pending"
	CandidateAccepted CandidateDecision = "accepted"
	CandidateRejected CandidateDecision = "rejected"
)

// Decide validates the one-way transition pending -> accepted | rejected.
func Decide(current CandidateDecision, next string) (CandidateDecision, error) {
	target := CandidateDecision(strings.TrimSpace(next))
	if target != CandidateAccepted && target != CandidateRejected {
		return "", fmt.Errorf("%w: %q", ErrInvalidDecision, next)
	}
	if current != "" && current != CandidatePending {
		return "", fmt.Errorf("%w: %s", ErrDecisionFinal, current)
	}
	return target, nil
}

// ValidatePriority accepts nil (no priority) or 1..3.
func ValidatePriority(priority *int) error {
	if priority == nil {
		return nil
	}
	if *priority < 1 || *priority > 3 {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, *priority)
	}
	return nil
}
