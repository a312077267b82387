package parliament

import "errors"

var (
	ErrBusinessNumberRequired = errors.New("business number is required")
	ErrInvalidBusinessNumber  = errors.New("invalid business number")
	ErrInvalidAlertType       = errors.New("invalid alert type")
	ErrInvalidPriority        = errors.New("priority must be 1, 2 or 3")
	ErrInvalidDecision        = errors.New("candidate decision must be accepted or rejected")
	ErrDecisionFinal          = errors.New("candidate has already been decided")
	ErrNoteRequired           = errors.New("note content is required")
)
