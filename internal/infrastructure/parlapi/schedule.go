package parlapi

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
)

func (c *Client) FetchPreconsultations(ctx context.Context, businessNumber string) ([]parliament.Preconsultation, error) {
	raw, err := c.query(ctx, "Preconsultation", map[string]string{
		"$filter": c.filter("BusinessShortNumber eq " + quote(businessNumber)),
	})
	if err != nil {
		return nil, err
	}

	type preconsultationRow struct {
		CommitteeName       string `json:"CommitteeName"`
		Abbreviation1       string `json:"Abbreviation1"`
		Abbreviation        string `json:"Abbreviation"`
		PreconsultationDate string `json:"PreconsultationDate"`
		TreatmentCategory   string `json:"TreatmentCategory"`
		BusinessTypeName    string `json:"BusinessTypeName"`
	}
	rows, err := decodeRows[preconsultationRow](raw)
	if err != nil {
		return nil, err
	}

	out := make([]parliament.Preconsultation, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.CommitteeName)
		if name == "" {
			continue
		}
		out = append(out, parliament.Preconsultation{
			CommitteeName:     name,
			CommitteeAbbrev:   firstNonEmpty(row.Abbreviation1, row.Abbreviation),
			Date:              parliament.ParseDate(row.PreconsultationDate),
			TreatmentCategory: strings.TrimSpace(row.TreatmentCategory),
			BusinessType:      strings.TrimSpace(row.BusinessTypeName),
		})
	}
	return out, nil
}

// FetchSessionSchedule follows business -> agenda subject -> meeting. A failed
// subject or meeting lookup drops that slot only; the business-level lookup
// failing fails the call.
func (c *Client) FetchSessionSchedule(ctx context.Context, businessNumber string) ([]parliament.SessionSlot, error) {
	logCtx := logging.WithComponent(ctx, "parlapi")

	raw, err := c.query(ctx, "SubjectBusiness", map[string]string{
		"$filter": c.filter("BusinessShortNumber eq " + quote(businessNumber)),
	})
	if err != nil {
		return nil, err
	}
	subjects, err := decodeRows[struct {
		IdSubject flexInt `json:"IdSubject"`
	}](raw)
	if err != nil {
		return nil, err
	}

	seenMeetings := make(map[int64]struct{})
	var out []parliament.SessionSlot
	for _, subject := range subjects {
		if subject.IdSubject == 0 {
			continue
		}
		meetingID, err := c.subjectMeeting(ctx, int64(subject.IdSubject))
		if err != nil {
			if ctx.Err() != nil {
				return nil, errs.Wrap(ctx.Err(), "fetch session schedule")
			}
			logging.Warn(logCtx, "subject lookup failed",
				slog.String("business_number", businessNumber),
				slog.Int64("subject_id", int64(subject.IdSubject)),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if meetingID == 0 {
			continue
		}
		if _, ok := seenMeetings[meetingID]; ok {
			continue
		}
		seenMeetings[meetingID] = struct{}{}

		slot, ok, err := c.meeting(ctx, meetingID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errs.Wrap(ctx.Err(), "fetch session schedule")
			}
			logging.Warn(logCtx, "meeting lookup failed",
				slog.String("business_number", businessNumber),
				slog.Int64("meeting_id", meetingID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		if ok {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (c *Client) subjectMeeting(ctx context.Context, subjectID int64) (int64, error) {
	raw, err := c.query(ctx, "Subject", map[string]string{
		"$filter": c.filter("ID eq " + strconv.FormatInt(subjectID, 10)),
	})
	if err != nil {
		return 0, err
	}
	rows, err := decodeRows[struct {
		IdMeeting flexInt `json:"IdMeeting"`
	}](raw)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return int64(rows[0].IdMeeting), nil
}

func (c *Client) meeting(ctx context.Context, meetingID int64) (parliament.SessionSlot, bool, error) {
	raw, err := c.query(ctx, "Meeting", map[string]string{
		"$filter": c.filter("ID eq " + strconv.FormatInt(meetingID, 10)),
	})
	if err != nil {
		return parliament.SessionSlot{}, false, err
	}

	type meetingRow struct {
		Date                string `json:"Date"`
		Begin               string `json:"Begin"`
		CouncilName         string `json:"CouncilName"`
		CouncilAbbreviation string `json:"CouncilAbbreviation"`
		SessionName         string `json:"SessionName"`
		MeetingOrderText    string `json:"MeetingOrderText"`
		Location            string `json:"Location"`
	}
	rows, err := decodeRows[meetingRow](raw)
	if err != nil || len(rows) == 0 {
		return parliament.SessionSlot{}, false, err
	}

	row := rows[0]
	return parliament.SessionSlot{
		MeetingDate:   parliament.ParseDate(row.Date),
		Begin:         strings.TrimSpace(row.Begin),
		Council:       strings.TrimSpace(row.CouncilName),
		CouncilAbbrev: strings.TrimSpace(row.CouncilAbbreviation),
		SessionName:   strings.TrimSpace(row.SessionName),
		MeetingOrder:  strings.TrimSpace(row.MeetingOrderText),
		Location:      strings.TrimSpace(row.Location),
	}, true, nil
}
