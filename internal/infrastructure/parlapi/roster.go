package parlapi

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/ports"
)

type memberRow struct {
	PersonNumber          flexInt `json:"PersonNumber"`
	FirstName             string  `json:"FirstName"`
	LastName              string  `json:"LastName"`
	GenderAsString        string  `json:"GenderAsString"`
	DateOfBirth           string  `json:"DateOfBirth"`
	CantonNumber          flexInt `json:"CantonNumber"`
	CantonName            string  `json:"CantonName"`
	CantonAbbreviation    string  `json:"CantonAbbreviation"`
	Council               flexInt `json:"Council"`
	CouncilNumber         flexInt `json:"CouncilNumber"`
	CouncilName           string  `json:"CouncilName"`
	PartyNumber           flexInt `json:"PartyNumber"`
	PartyName             string  `json:"PartyName"`
	PartyAbbreviation     string  `json:"PartyAbbreviation"`
	ParlGroupNumber       flexInt `json:"ParlGroupNumber"`
	ParlGroupName         string  `json:"ParlGroupName"`
	ParlGroupAbbreviation string  `json:"ParlGroupAbbreviation"`
	DateJoining           string  `json:"DateJoining"`
	DateLeaving           string  `json:"DateLeaving"`
}

// FetchMembers returns the sitting members of both councils.
func (c *Client) FetchMembers(ctx context.Context) ([]ports.Parliamentarian, error) {
	raw, err := c.queryAll(ctx, "MemberCouncil", map[string]string{
		"$filter": c.filter("Active eq true"),
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[memberRow](raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	out := make([]ports.Parliamentarian, 0, len(rows))
	for _, row := range rows {
		number := int64(row.PersonNumber)
		if number == 0 {
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}

		out = append(out, ports.Parliamentarian{
			PersonNumber:          number,
			FirstName:             strings.TrimSpace(row.FirstName),
			LastName:              strings.TrimSpace(row.LastName),
			Gender:                strings.TrimSpace(row.GenderAsString),
			DateOfBirth:           parliament.ParseDate(row.DateOfBirth).Ptr(),
			CantonNumber:          int64(row.CantonNumber),
			CantonName:            strings.TrimSpace(row.CantonName),
			CantonAbbreviation:    strings.TrimSpace(row.CantonAbbreviation),
			CouncilNumber:         firstNonZero(row.CouncilNumber, row.Council),
			CouncilName:           strings.TrimSpace(row.CouncilName),
			PartyNumber:           int64(row.PartyNumber),
			PartyName:             strings.TrimSpace(row.PartyName),
			PartyAbbreviation:     strings.TrimSpace(row.PartyAbbreviation),
			ParlGroupNumber:       int64(row.ParlGroupNumber),
			ParlGroupName:         strings.TrimSpace(row.ParlGroupName),
			ParlGroupAbbreviation: strings.TrimSpace(row.ParlGroupAbbreviation),
			MembershipStart:       parliament.ParseDate(row.DateJoining).Ptr(),
			MembershipEnd:         parliament.ParseDate(row.DateLeaving).Ptr(),
			Active:                true,
		})
	}
	return out, nil
}

type namedRow struct {
	Number       int64
	Name         string
	Abbreviation string
}

// fetchNamed loads a small reference entity and keeps the first row per number.
func (c *Client) fetchNamed(ctx context.Context, entity string, decode func(json.RawMessage) (namedRow, error)) ([]namedRow, error) {
	raw, err := c.queryAll(ctx, entity, map[string]string{"$filter": c.filter()})
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(raw))
	out := make([]namedRow, 0, len(raw))
	for _, item := range raw {
		row, err := decode(item)
		if err != nil {
			return nil, err
		}
		if row.Number == 0 {
			continue
		}
		if _, ok := seen[row.Number]; ok {
			continue
		}
		seen[row.Number] = struct{}{}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) FetchParties(ctx context.Context) ([]ports.Party, error) {
	rows, err := c.fetchNamed(ctx, "Party", func(item json.RawMessage) (namedRow, error) {
		var row struct {
			PartyNumber       flexInt `json:"PartyNumber"`
			PartyName         string  `json:"PartyName"`
			PartyAbbreviation string  `json:"PartyAbbreviation"`
		}
		err := json.Unmarshal(item, &row)
		return namedRow{int64(row.PartyNumber), strings.TrimSpace(row.PartyName), strings.TrimSpace(row.PartyAbbreviation)}, err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ports.Party, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.Party{Number: row.Number, Name: row.Name, Abbreviation: row.Abbreviation})
	}
	return out, nil
}

func (c *Client) FetchParlGroups(ctx context.Context) ([]ports.ParlGroup, error) {
	rows, err := c.fetchNamed(ctx, "ParlGroup", func(item json.RawMessage) (namedRow, error) {
		var row struct {
			ParlGroupNumber       flexInt `json:"ParlGroupNumber"`
			ParlGroupName         string  `json:"ParlGroupName"`
			ParlGroupAbbreviation string  `json:"ParlGroupAbbreviation"`
		}
		err := json.Unmarshal(item, &row)
		return namedRow{int64(row.ParlGroupNumber), strings.TrimSpace(row.ParlGroupName), strings.TrimSpace(row.ParlGroupAbbreviation)}, err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ports.ParlGroup, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.ParlGroup{Number: row.Number, Name: row.Name, Abbreviation: row.Abbreviation})
	}
	return out, nil
}

func (c *Client) FetchCantons(ctx context.Context) ([]ports.Canton, error) {
	rows, err := c.fetchNamed(ctx, "Canton", func(item json.RawMessage) (namedRow, error) {
		var row struct {
			CantonNumber       flexInt `json:"CantonNumber"`
			CantonName         string  `json:"CantonName"`
			CantonAbbreviation string  `json:"CantonAbbreviation"`
		}
		err := json.Unmarshal(item, &row)
		return namedRow{int64(row.CantonNumber), strings.TrimSpace(row.CantonName), strings.TrimSpace(row.CantonAbbreviation)}, err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ports.Canton, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.Canton{Number: row.Number, Name: row.Name, Abbreviation: row.Abbreviation})
	}
	return out, nil
}

func (c *Client) FetchCommittees(ctx context.Context) ([]ports.Committee, error) {
	raw, err := c.queryAll(ctx, "Committee", map[string]string{"$filter": c.filter()})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[struct {
		CommitteeNumber   flexInt `json:"CommitteeNumber"`
		CommitteeName     string  `json:"CommitteeName"`
		Abbreviation      string  `json:"Abbreviation"`
		Council           flexInt `json:"Council"`
		CouncilNumber     flexInt `json:"CouncilNumber"`
		CommitteeTypeName string  `json:"CommitteeTypeName"`
	}](raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	out := make([]ports.Committee, 0, len(rows))
	for _, row := range rows {
		number := int64(row.CommitteeNumber)
		if number == 0 {
			continue
		}
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		out = append(out, ports.Committee{
			Number:        number,
			Name:          strings.TrimSpace(row.CommitteeName),
			Abbreviation:  strings.TrimSpace(row.Abbreviation),
			CouncilNumber: firstNonZero(row.CouncilNumber, row.Council),
			CommitteeType: strings.TrimSpace(row.CommitteeTypeName),
		})
	}
	return out, nil
}

// FetchMemberships returns current and past committee seats. A seat without a
// joining date keeps the zero start date.
func (c *Client) FetchMemberships(ctx context.Context) ([]ports.CommitteeMembership, error) {
	raw, err := c.queryAll(ctx, "MemberCommittee", map[string]string{"$filter": c.filter()})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[struct {
		PersonNumber          flexInt `json:"PersonNumber"`
		CommitteeNumber       flexInt `json:"CommitteeNumber"`
		CommitteeName         string  `json:"CommitteeName"`
		Abbreviation          string  `json:"Abbreviation"`
		Council               flexInt `json:"Council"`
		CouncilNumber         flexInt `json:"CouncilNumber"`
		Function              string  `json:"Function"`
		CommitteeFunctionName string  `json:"CommitteeFunctionName"`
		DateJoining           string  `json:"DateJoining"`
		DateLeaving           string  `json:"DateLeaving"`
	}](raw)
	if err != nil {
		return nil, err
	}

	out := make([]ports.CommitteeMembership, 0, len(rows))
	for _, row := range rows {
		if row.PersonNumber == 0 || row.CommitteeNumber == 0 {
			continue
		}
		out = append(out, ports.CommitteeMembership{
			PersonNumber:          int64(row.PersonNumber),
			CommitteeNumber:       int64(row.CommitteeNumber),
			CommitteeName:         strings.TrimSpace(row.CommitteeName),
			CommitteeAbbreviation: strings.TrimSpace(row.Abbreviation),
			CouncilNumber:         firstNonZero(row.CouncilNumber, row.Council),
			Function:              firstNonEmpty(row.Function, row.CommitteeFunctionName),
			StartDate:             parliament.ParseDate(row.DateJoining).Time,
			EndDate:               parliament.ParseDate(row.DateLeaving).Ptr(),
		})
	}
	return out, nil
}

func (c *Client) FetchSessions(ctx context.Context, minSessionID int64) ([]ports.Session, error) {
	raw, err := c.queryAll(ctx, "Session", map[string]string{
		"$filter":  c.filter("ID ge " + strconv.FormatInt(minSessionID, 10)),
		"$orderby": "ID asc",
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[struct {
		ID           flexInt `json:"ID"`
		SessionName  string  `json:"SessionName"`
		Abbreviation string  `json:"Abbreviation"`
		StartDate    string  `json:"StartDate"`
	}](raw)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Session, 0, len(rows))
	for _, row := range rows {
		if row.ID == 0 {
			continue
		}
		out = append(out, ports.Session{
			ID:           int64(row.ID),
			Name:         strings.TrimSpace(row.SessionName),
			Abbreviation: strings.TrimSpace(row.Abbreviation),
			StartDate:    parliament.ParseDate(row.StartDate).Ptr(),
		})
	}
	return out, nil
}

func (c *Client) FetchVotes(ctx context.Context, sessionID int64) ([]ports.Vote, error) {
	raw, err := c.queryAll(ctx, "Vote", map[string]string{
		"$filter":  c.filter("IdSession eq " + strconv.FormatInt(sessionID, 10)),
		"$orderby": "ID asc",
	})
	if err != nil {
		return nil, err
	}

	type voteRow struct {
		ID                  flexInt `json:"ID"`
		IdSession           flexInt `json:"IdSession"`
		SessionName         string  `json:"SessionName"`
		BusinessShortNumber string  `json:"BusinessShortNumber"`
		BusinessTitle       string  `json:"BusinessTitle"`
		Subject             string  `json:"Subject"`
		MeaningYes          string  `json:"MeaningYes"`
		MeaningNo           string  `json:"MeaningNo"`
		VoteEnd             string  `json:"VoteEnd"`
		Date                string  `json:"Date"`
		IdCouncil           flexInt `json:"IdCouncil"`
		CouncilNumber       flexInt `json:"CouncilNumber"`
		TotalYes            flexInt `json:"TotalYes"`
		TotalNo             flexInt `json:"TotalNo"`
		TotalAbstain        flexInt `json:"TotalAbstain"`
		TotalNotVoted       flexInt `json:"TotalNotVoted"`
		ResultText          string  `json:"ResultText"`
	}
	rows, err := decodeRows[voteRow](raw)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Vote, 0, len(rows))
	for i, row := range rows {
		if row.ID == 0 {
			continue
		}
		date := parliament.ParseDate(row.VoteEnd)
		if !date.Valid() {
			date = parliament.ParseDate(row.Date)
		}
		session := int64(row.IdSession)
		if session == 0 {
			session = sessionID
		}
		out = append(out, ports.Vote{
			VoteID:         int64(row.ID),
			SessionID:      session,
			SessionName:    strings.TrimSpace(row.SessionName),
			CouncilNumber:  firstNonZero(row.IdCouncil, row.CouncilNumber),
			BusinessNumber: strings.TrimSpace(row.BusinessShortNumber),
			BusinessTitle:  strings.TrimSpace(row.BusinessTitle),
			Subject:        strings.TrimSpace(row.Subject),
			MeaningYes:     strings.TrimSpace(row.MeaningYes),
			MeaningNo:      strings.TrimSpace(row.MeaningNo),
			VoteDate:       date.Ptr(),
			TotalYes:       int(row.TotalYes),
			TotalNo:        int(row.TotalNo),
			TotalAbstain:   int(row.TotalAbstain),
			TotalNotVoted:  int(row.TotalNotVoted),
			Result:         strings.TrimSpace(row.ResultText),
			RawData:        []byte(raw[i]),
		})
	}
	return out, nil
}

// FetchBallots returns individual ballots with the upstream decision label
// untouched; callers normalize it.
func (c *Client) FetchBallots(ctx context.Context, voteID int64) ([]ports.Voting, error) {
	raw, err := c.queryAll(ctx, "Voting", map[string]string{
		"$filter": c.filter("IdVote eq " + strconv.FormatInt(voteID, 10)),
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[struct {
		PersonNumber    flexInt    `json:"PersonNumber"`
		DecisionText    string     `json:"DecisionText"`
		Decision        flexString `json:"Decision"`
		ParlGroupNumber flexInt    `json:"ParlGroupNumber"`
		CantonNumber    flexInt    `json:"CantonNumber"`
	}](raw)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Voting, 0, len(rows))
	for _, row := range rows {
		if row.PersonNumber == 0 {
			continue
		}
		out = append(out, ports.Voting{
			VoteID:          voteID,
			PersonNumber:    int64(row.PersonNumber),
			Decision:        firstNonEmpty(row.DecisionText, string(row.Decision)),
			ParlGroupNumber: int64(row.ParlGroupNumber),
			CantonNumber:    int64(row.CantonNumber),
		})
	}
	return out, nil
}
