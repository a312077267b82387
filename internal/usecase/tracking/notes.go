package tracking

import (
	"context"
	"strings"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/ports"
)

// AddNote attaches a note to the user's tracking row for the business.
func (s *Service) AddNote(ctx context.Context, userID uint64, businessNumber string, content string) (ports.BusinessNote, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return ports.BusinessNote{}, parliament.ErrNoteRequired
	}
	row, err := s.trackedRow(ctx, userID, businessNumber)
	if err != nil {
		return ports.BusinessNote{}, err
	}

	note := ports.BusinessNote{TrackedID: row.ID, UserID: userID, Content: text}
	if s.users != nil {
		if user, err := s.users.GetUser(ctx, userID); err == nil {
			note.AuthorName = user.DisplayName
		}
	}
	return s.tracking.AddNote(ctx, note)
}

func (s *Service) ListNotes(ctx context.Context, userID uint64, businessNumber string) ([]ports.BusinessNote, error) {
	row, err := s.trackedRow(ctx, userID, businessNumber)
	if err != nil {
		return nil, err
	}
	return s.tracking.ListNotes(ctx, row.ID)
}

func (s *Service) trackedRow(ctx context.Context, userID uint64, businessNumber string) (ports.TrackedBusiness, error) {
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return ports.TrackedBusiness{}, err
	}
	return s.tracking.Get(ctx, userID, number)
}
