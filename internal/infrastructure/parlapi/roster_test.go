package parlapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMembersDedupesAndMapsFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/MemberCouncil", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("$filter"), "Active eq true")
		if r.URL.Query().Get("$skip") != "0" {
			writeJSON(w, `{"d":[]}`)
			return
		}
		writeJSON(w, `{"d":[
			{"PersonNumber":4001,"FirstName":"Anna","LastName":"Muster","Council":1,"CouncilName":"Nationalrat","ParlGroupNumber":"3","ParlGroupAbbreviation":"S","DateJoining":"2019-12-02T00:00:00"},
			{"PersonNumber":4001,"FirstName":"Anna","LastName":"Muster"}
		]}`)
	})

	members, err := client.FetchMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(1), members[0].CouncilNumber)
	assert.Equal(t, int64(3), members[0].ParlGroupNumber)
	assert.True(t, members[0].Active)
	require.NotNil(t, members[0].MembershipStart)
	assert.Nil(t, members[0].MembershipEnd)
}

func TestFetchBallotsKeepsRawDecision(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("$filter"), "IdVote eq 77")
		if r.URL.Query().Get("$skip") != "0" {
			writeJSON(w, `{"d":[]}`)
			return
		}
		writeJSON(w, `{"d":[
			{"PersonNumber":1,"DecisionText":"Ja","ParlGroupNumber":3},
			{"PersonNumber":2,"Decision":7,"DecisionText":"Vakant"},
			{"PersonNumber":0,"DecisionText":"Nein"}
		]}`)
	})

	ballots, err := client.FetchBallots(context.Background(), 77)
	require.NoError(t, err)
	require.Len(t, ballots, 2)
	assert.Equal(t, "Ja", ballots[0].Decision)
	assert.Equal(t, int64(77), ballots[0].VoteID)
	assert.Equal(t, "Vakant", ballots[1].Decision)
}

func TestFetchVotesDefaultsSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"d":[{"ID":"501","BusinessShortNumber":"24.3927","VoteEnd":"/Date(1741600000000)/","TotalYes":100,"TotalNo":"90"}]}`)
	})

	votes, err := client.FetchVotes(context.Background(), 5201)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, int64(5201), votes[0].SessionID)
	assert.Equal(t, 90, votes[0].TotalNo)
	require.NotNil(t, votes[0].VoteDate)
	assert.NotEmpty(t, votes[0].RawData)
}

func TestFetchMembershipsSkipsIncompleteRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("$skip") != "0" {
			writeJSON(w, `{"d":[]}`)
			return
		}
		writeJSON(w, `{"d":[
			{"PersonNumber":1,"CommitteeNumber":5,"Abbreviation":"WAK-N","Function":"Mitglied","DateJoining":"2023-12-04T00:00:00","DateLeaving":"2024-06-01T00:00:00"},
			{"PersonNumber":2,"CommitteeNumber":0}
		]}`)
	})

	rows, err := client.FetchMemberships(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsActive())
	assert.Equal(t, "Mitglied", rows[0].Function)
}
