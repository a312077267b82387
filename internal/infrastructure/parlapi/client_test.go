package parlapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.UpstreamConfig{
		BaseURL:        server.URL,
		Language:       "DE",
		Timeout:        2 * time.Second,
		RetryCount:     2,
		RetryWait:      time.Millisecond,
		RetryMaxWait:   5 * time.Millisecond,
		PageSize:       2,
		RecentCacheTTL: time.Minute,
	})
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, body)
}

func TestDecodeResultsAcceptsBothEnvelopes(t *testing.T) {
	rows, err := decodeResults([]byte(`{"d":{"results":[{"ID":1},{"ID":2}]}}`))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = decodeResults([]byte(`{"d":[{"ID":1}]}`))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = decodeResults([]byte(`{"d":null}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `{"d":{"results":[{"BusinessShortNumber":"24.3927","Title":"T"}]}}`)
	})

	rows, err := client.SearchBusinesses(context.Background(), "T")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQueryReportsUnavailableAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchBusiness(context.Background(), "24.3927")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), calls.Load())

	var stacked *errs.StackError
	require.True(t, errors.As(err, &stacked))
	assert.NotEmpty(t, stacked.Stack())
}

func TestQueryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.FetchCantons(context.Background())
	assert.ErrorIs(t, err, ports.ErrUpstreamUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchBusinessResolvesAuthorFaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		assert.Contains(t, filter, "Language eq 'DE'")
		assert.Equal(t, "json", r.URL.Query().Get("$format"))

		switch r.URL.Path {
		case "/Business":
			assert.Contains(t, filter, "BusinessShortNumber eq '24.3927'")
			writeJSON(w, `{"d":{"results":[{
				"BusinessShortNumber":"24.3927",
				"Title":"Motion",
				"BusinessStatusText":"Eingereicht",
				"BusinessTypeName":"Motion",
				"SubmittedBy":"Muster Anna",
				"FirstCouncil1Name":"Nationalrat",
				"SubmissionDate":"/Date(1727740800000)/"
			}]}}`)
		case "/BusinessRole":
			writeJSON(w, `{"d":[{"MemberCouncilNumber":null},{"MemberCouncilNumber":4242}]}`)
		case "/MemberCouncil":
			assert.Contains(t, filter, "ID eq 4242")
			writeJSON(w, `{"d":[{"ParlGroupName":"","PartyName":"SP"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	info, err := client.FetchBusiness(context.Background(), " 24.3927 ")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "24.3927", info.BusinessNumber)
	assert.Equal(t, "Eingereicht", info.Status)
	assert.Equal(t, "Muster Anna", info.Author)
	assert.Equal(t, "SP", info.AuthorFaction)
	require.NotNil(t, info.SubmissionDate)
	assert.Equal(t, "2024-10-01", info.SubmissionDate.Format("2006-01-02"))
	assert.Contains(t, string(info.RawData), "Motion")
}

func TestFetchBusinessNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"d":{"results":[]}}`)
	})

	info, err := client.FetchBusiness(context.Background(), "24.3927")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFetchBusinessEventsUsesUpstreamID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/BusinessStatus", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("$filter"), "BusinessNumber eq 20243927")
		assert.Equal(t, "Modified desc", r.URL.Query().Get("$orderby"))
		writeJSON(w, `{"d":[
			{"BusinessStatusName":"Erledigt","Modified":"2025-03-01T10:00:00"},
			{"BusinessStatusName":"","BusinessStatusDate":"2024-10-01"},
			{"BusinessStatusName":"Eingereicht","BusinessStatusDate":"2024-09-27T00:00:00"}
		]}`)
	})

	entries, err := client.FetchBusinessEvents(context.Background(), "24.3927")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Erledigt", entries[0].Status)
	require.NotNil(t, entries[0].Date)
	assert.Equal(t, 2025, entries[0].Date.Year())
	assert.Equal(t, "Eingereicht", entries[1].Status)
}

func TestFetchBusinessesByPrefixPagesAndCaches(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Contains(t, q.Get("$filter"), "startswith(BusinessShortNumber, '25.')")
		assert.Equal(t, "2", q.Get("$top"))
		switch q.Get("$skip") {
		case "0":
			writeJSON(w, `{"d":[{"BusinessShortNumber":"25.3003","Title":"C"},{"BusinessShortNumber":"25.3002","Title":"B"}]}`)
		case "2":
			writeJSON(w, `{"d":[{"BusinessShortNumber":"25.3001","Title":"A"}]}`)
		default:
			t.Errorf("unexpected skip %q", q.Get("$skip"))
		}
	})

	rows, err := client.FetchBusinessesByPrefix(context.Background(), "25.")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "25.3001", rows[2].BusinessNumber)

	_, err = client.FetchBusinessesByPrefix(context.Background(), "25.")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchQuotesText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("$filter"), "substringof('l''eau', Title)")
		writeJSON(w, `{"d":[]}`)
	})

	rows, err := client.SearchBusinesses(context.Background(), "l'eau")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchSessionScheduleFollowsSubjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		switch r.URL.Path {
		case "/SubjectBusiness":
			writeJSON(w, `{"d":[{"IdSubject":11},{"IdSubject":12},{"IdSubject":13}]}`)
		case "/Subject":
			switch {
			case strings.Contains(filter, "ID eq 11"), strings.Contains(filter, "ID eq 12"):
				writeJSON(w, `{"d":[{"IdMeeting":"900"}]}`)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		case "/Meeting":
			assert.Contains(t, filter, "ID eq 900")
			writeJSON(w, `{"d":[{
				"Date":"/Date(1741564800000)/",
				"Begin":"08:00",
				"CouncilName":"Nationalrat",
				"CouncilAbbreviation":"NR",
				"SessionName":"Frühjahrssession 2025",
				"MeetingOrderText":"Erste Sitzung"
			}]}`)
		}
	})

	slots, err := client.FetchSessionSchedule(context.Background(), "24.3927")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Nationalrat", slots[0].Council)
	assert.Equal(t, "Erste Sitzung", slots[0].MeetingOrder)
	assert.True(t, slots[0].MeetingDate.Valid())
}

func TestFetchPreconsultationsSkipsUnnamedCommittees(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"d":[
			{"CommitteeName":"Kommission für Wirtschaft und Abgaben","Abbreviation1":"WAK-N","PreconsultationDate":"2025-02-10T00:00:00","TreatmentCategory":"B"},
			{"CommitteeName":"  "}
		]}`)
	})

	rows, err := client.FetchPreconsultations(context.Background(), "24.3927")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WAK-N", rows[0].CommitteeAbbrev)
	assert.Equal(t, 10, rows[0].Date.Time.Day())
}

func TestQueryAllStopsWhenSkipIsIgnored(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, `{"d":[{"PersonNumber":1,"DecisionText":"Ja"},{"PersonNumber":2,"DecisionText":"Nein"}]}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ballots, err := client.FetchBallots(ctx, 77)
	require.NoError(t, err)
	assert.Len(t, ballots, 2)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryAllGivesUpAfterMaxPages(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		writeJSON(w, fmt.Sprintf(`{"d":[{"ID":%d},{"ID":%d}]}`, 2*n, 2*n+1))
	})
	client.maxPages = 3

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.FetchSessions(ctx, 5100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrUpstreamUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRestyMessagesGoThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger := restyLogger{ctx: ctx}

	logger.Warnf("%v, Attempt %v\n", "connection refused", 1)
	logger.Errorf("giving up: %s", "timeout")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="connection refused, Attempt 1"`)
	assert.Contains(t, out, "level=ERROR")
	assert.NotContains(t, out, "RESTY")
}
