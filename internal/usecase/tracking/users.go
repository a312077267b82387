package tracking

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

// RegisterUser creates a user with email alerts disabled and the default
// alert type subset.
func (s *Service) RegisterUser(ctx context.Context, email string, displayName string) (ports.User, error) {
	if s.users == nil {
		return ports.User{}, errors.New("user repository is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return ports.User{}, errs.Wrapf(err, "parse email %q", email)
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = addr.Name
	}
	return s.users.CreateUser(ctx, ports.User{Email: addr.Address, DisplayName: name})
}

// UpdateNotifications switches email alerts and replaces the mailed alert
// types. An empty list keeps the stored subset.
func (s *Service) UpdateNotifications(ctx context.Context, userID uint64, enabled bool, alertTypes []string) (ports.User, error) {
	if s.users == nil {
		return ports.User{}, errors.New("user repository is required")
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return ports.User{}, err
	}

	subset := user.AlertTypes
	if len(alertTypes) > 0 {
		parsed := make([]parliament.AlertType, 0, len(alertTypes))
		for _, raw := range alertTypes {
			t, err := parliament.ParseAlertType(raw)
			if err != nil {
				return ports.User{}, err
			}
			parsed = append(parsed, t)
		}
		subset = parliament.FormatAlertTypeSet(parsed)
	}

	if err := s.users.UpdateNotificationSettings(ctx, userID, enabled, subset); err != nil {
		return ports.User{}, err
	}
	user.EmailAlertsEnabled = enabled
	user.AlertTypes = subset
	return user, nil
}
