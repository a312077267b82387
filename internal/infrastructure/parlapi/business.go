package parlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

const (
	searchLimit       = 20
	newBusinessLimit  = 100
	searchCachePrefix = "search:"
	prefixCachePrefix = "prefix:"
)

type businessRow struct {
	ID                         flexInt `json:"ID"`
	BusinessShortNumber        string  `json:"BusinessShortNumber"`
	Title                      string  `json:"Title"`
	Description                string  `json:"Description"`
	BusinessStatusText         string  `json:"BusinessStatusText"`
	BusinessTypeName           string  `json:"BusinessTypeName"`
	SubmittedBy                string  `json:"SubmittedBy"`
	SubmittedText              string  `json:"SubmittedText"`
	ReasonText                 string  `json:"ReasonText"`
	FederalCouncilResponseText string  `json:"FederalCouncilResponseText"`
	FederalCouncilProposalText string  `json:"FederalCouncilProposalText"`
	FirstCouncil1Name          string  `json:"FirstCouncil1Name"`
	SubmissionDate             string  `json:"SubmissionDate"`
}

func (r businessRow) info(raw json.RawMessage) ports.BusinessInfo {
	return ports.BusinessInfo{
		BusinessNumber: strings.TrimSpace(r.BusinessShortNumber),
		BusinessDetails: parliament.BusinessDetails{
			Title:                  r.Title,
			Description:            r.Description,
			Status:                 r.BusinessStatusText,
			BusinessType:           r.BusinessTypeName,
			Author:                 r.SubmittedBy,
			SubmittedText:          r.SubmittedText,
			Reasoning:              r.ReasonText,
			FederalCouncilResponse: r.FederalCouncilResponseText,
			FederalCouncilProposal: r.FederalCouncilProposalText,
			FirstCouncil:           r.FirstCouncil1Name,
		},
		SubmissionDate: parliament.ParseDate(r.SubmissionDate).Ptr(),
		RawData:        []byte(raw),
	}
}

func (c *Client) FetchBusiness(ctx context.Context, businessNumber string) (*ports.BusinessInfo, error) {
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return nil, err
	}

	raw, err := c.query(ctx, "Business", map[string]string{
		"$filter": c.filter("BusinessShortNumber eq " + quote(number)),
	})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	rows, err := decodeRows[businessRow](raw[:1])
	if err != nil {
		return nil, err
	}
	info := rows[0].info(raw[0])
	if info.BusinessNumber == "" {
		info.BusinessNumber = number
	}

	faction, err := c.fetchAuthorFaction(ctx, number)
	if err != nil {
		logging.Debug(
			logging.WithComponent(ctx, "parlapi"),
			"author faction lookup failed",
			slog.String("business_number", number),
			slog.Any("err", errs.Loggable(err)),
		)
	}
	info.AuthorFaction = faction
	return &info, nil
}

// fetchAuthorFaction resolves the first authoring member of a business to
// their parliamentary group, falling back to the party name.
func (c *Client) fetchAuthorFaction(ctx context.Context, businessNumber string) (string, error) {
	raw, err := c.query(ctx, "BusinessRole", map[string]string{
		"$filter": c.filter("BusinessShortNumber eq " + quote(businessNumber)),
	})
	if err != nil {
		return "", err
	}
	roles, err := decodeRows[struct {
		MemberCouncilNumber flexInt `json:"MemberCouncilNumber"`
	}](raw)
	if err != nil {
		return "", err
	}

	var memberNumber int64
	for _, role := range roles {
		if role.MemberCouncilNumber != 0 {
			memberNumber = int64(role.MemberCouncilNumber)
			break
		}
	}
	if memberNumber == 0 {
		return "", nil
	}

	raw, err = c.query(ctx, "MemberCouncil", map[string]string{
		"$filter": c.filter("ID eq " + strconv.FormatInt(memberNumber, 10)),
		"$select": "ParlGroupName,ParlGroupAbbreviation,PartyName",
	})
	if err != nil {
		return "", err
	}
	members, err := decodeRows[struct {
		ParlGroupName string `json:"ParlGroupName"`
		PartyName     string `json:"PartyName"`
	}](raw)
	if err != nil || len(members) == 0 {
		return "", err
	}
	return firstNonEmpty(members[0].ParlGroupName, members[0].PartyName), nil
}

// FetchBusinessEvents returns the status history, newest first. The status
// entity is keyed by the numeric business id, not the short number.
func (c *Client) FetchBusinessEvents(ctx context.Context, businessNumber string) ([]ports.StatusEntry, error) {
	number, err := parliament.ParseBusinessNumber(businessNumber)
	if err != nil {
		return nil, err
	}
	upstreamID, err := parliament.UpstreamID(number)
	if err != nil {
		return nil, err
	}

	raw, err := c.query(ctx, "BusinessStatus", map[string]string{
		"$filter":  c.filter(fmt.Sprintf("BusinessNumber eq %d", upstreamID)),
		"$orderby": "Modified desc",
	})
	if err != nil {
		return nil, err
	}

	type statusRow struct {
		BusinessStatusName string `json:"BusinessStatusName"`
		BusinessStatusDate string `json:"BusinessStatusDate"`
		Modified           string `json:"Modified"`
	}
	rows, err := decodeRows[statusRow](raw)
	if err != nil {
		return nil, err
	}

	out := make([]ports.StatusEntry, 0, len(rows))
	for i, row := range rows {
		status := strings.TrimSpace(row.BusinessStatusName)
		if status == "" {
			continue
		}
		date := parliament.ParseDate(row.BusinessStatusDate)
		if !date.Valid() {
			date = parliament.ParseDate(row.Modified)
		}
		out = append(out, ports.StatusEntry{
			Status:  status,
			Date:    date.Ptr(),
			RawData: []byte(raw[i]),
		})
	}
	return out, nil
}

func (c *Client) FetchNewBusinesses(ctx context.Context, since time.Time) ([]ports.BusinessInfo, error) {
	raw, err := c.query(ctx, "Business", map[string]string{
		"$filter":  c.filter("SubmissionDate ge datetime'" + since.UTC().Format("2006-01-02") + "T00:00:00'"),
		"$orderby": "SubmissionDate desc",
		"$top":     strconv.Itoa(newBusinessLimit),
	})
	if err != nil {
		return nil, err
	}
	return c.decodeBusinesses(raw)
}

// SearchBusinesses matches text against titles. Results are cached per query.
func (c *Client) SearchBusinesses(ctx context.Context, text string) ([]ports.BusinessInfo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	key := searchCachePrefix + strings.ToLower(text)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]ports.BusinessInfo), nil
	}

	raw, err := c.query(ctx, "Business", map[string]string{
		"$filter":  c.filter("substringof(" + quote(text) + ", Title)"),
		"$orderby": "SubmissionDate desc",
		"$top":     strconv.Itoa(searchLimit),
	})
	if err != nil {
		return nil, err
	}
	out, err := c.decodeBusinesses(raw)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

// FetchBusinessesByPrefix lists every business whose short number starts with
// prefix (e.g. "25."), newest number first. Only number and title are loaded.
func (c *Client) FetchBusinessesByPrefix(ctx context.Context, prefix string) ([]ports.BusinessInfo, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	key := prefixCachePrefix + prefix
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]ports.BusinessInfo), nil
	}

	raw, err := c.queryAll(ctx, "Business", map[string]string{
		"$filter":  c.filter("startswith(BusinessShortNumber, " + quote(prefix) + ")"),
		"$select":  "BusinessShortNumber,Title",
		"$orderby": "BusinessShortNumber desc",
	})
	if err != nil {
		return nil, err
	}
	out, err := c.decodeBusinesses(raw)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

func (c *Client) decodeBusinesses(raw []json.RawMessage) ([]ports.BusinessInfo, error) {
	rows, err := decodeRows[businessRow](raw)
	if err != nil {
		return nil, err
	}
	out := make([]ports.BusinessInfo, 0, len(rows))
	for i, row := range rows {
		info := row.info(raw[i])
		if info.BusinessNumber == "" {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}
