package prediction

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"parlmonitor/internal/domain/parliament"
	domainprediction "parlmonitor/internal/domain/prediction"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "parlmonitor/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "parlmonitor/internal/infrastructure/persistence/sqlite/uow"
	"parlmonitor/internal/ports"
)

type stubGateway struct {
	ports.ParliamentGateway
	preconsultations []parliament.Preconsultation
}

func (g *stubGateway) FetchPreconsultations(context.Context, string) ([]parliament.Preconsultation, error) {
	return g.preconsultations, nil
}

type fixture struct {
	svc        *Service
	now        time.Time
	gateway    *stubGateway
	reference  *sqliterepo.ReferenceRepository
	committees *sqliterepo.CommitteeRepository
	votes      *sqliterepo.VoteRepository
	tracking   *sqliterepo.TrackingRepository
	users      *sqliterepo.UserRepository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "prediction.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	f := &fixture{
		now:        time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		gateway:    &stubGateway{},
		reference:  sqliterepo.NewReferenceRepository(db),
		committees: sqliterepo.NewCommitteeRepository(db),
		votes:      sqliterepo.NewVoteRepository(db),
		tracking:   sqliterepo.NewTrackingRepository(db),
		users:      sqliterepo.NewUserRepository(db),
	}
	f.svc = NewService(Dependencies{
		Reference:   f.reference,
		Committees:  f.committees,
		Votes:       f.votes,
		Predictions: sqliterepo.NewPredictionRepository(db),
		Tracking:    f.tracking,
		Gateway:     f.gateway,
		UoW:         sqliteuow.NewUnitOfWork(db),
	}, "statistical_v1", 24*time.Hour)
	f.svc.now = func() time.Time { return f.now }
	return f
}

// seedRoster stores three National Council members: 4001 and 4002 in group S
// (3), 4003 in group V (5). Group S voted Yes on both roll calls, group V No.
func seedRoster(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.reference.UpsertParlGroups(ctx, []ports.ParlGroup{
		{Number: 3, Name: "Sozialdemokratische Fraktion", Abbreviation: "S"},
		{Number: 5, Name: "SVP-Fraktion", Abbreviation: "V"},
	}, f.now))
	require.NoError(t, f.reference.UpsertParliamentarians(ctx, []ports.Parliamentarian{
		{PersonNumber: 4001, LastName: "Muster", CouncilNumber: 1, ParlGroupNumber: 3, ParlGroupAbbreviation: "S", ParlGroupName: "Sozialdemokratische Fraktion", Active: true},
		{PersonNumber: 4002, LastName: "Beispiel", CouncilNumber: 1, ParlGroupNumber: 3, ParlGroupAbbreviation: "S", ParlGroupName: "Sozialdemokratische Fraktion", Active: true},
		{PersonNumber: 4003, LastName: "Probst", CouncilNumber: 1, ParlGroupNumber: 5, ParlGroupAbbreviation: "V", ParlGroupName: "SVP-Fraktion", Active: true},
	}, f.now))

	for _, voteID := range []int64{1, 2} {
		created, err := f.votes.CreateVote(ctx, ports.Vote{VoteID: voteID, SessionID: 5201, BusinessNumber: "24.3927"})
		require.NoError(t, err)
		require.True(t, created)
	}
	_, err := f.votes.CreateVotings(ctx, []ports.Voting{
		{VoteID: 1, PersonNumber: 4001, Decision: parliament.DecisionYes, ParlGroupNumber: 3},
		{VoteID: 1, PersonNumber: 4002, Decision: parliament.DecisionYes, ParlGroupNumber: 3},
		{VoteID: 1, PersonNumber: 4003, Decision: parliament.DecisionNo, ParlGroupNumber: 5},
		{VoteID: 2, PersonNumber: 4001, Decision: parliament.DecisionYes, ParlGroupNumber: 3},
		{VoteID: 2, PersonNumber: 4002, Decision: parliament.DecisionYes, ParlGroupNumber: 3},
		{VoteID: 2, PersonNumber: 4003, Decision: parliament.DecisionNo, ParlGroupNumber: 5},
	})
	require.NoError(t, err)
}

func (f *fixture) track(t *testing.T, number string, details parliament.BusinessDetails) {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, ports.User{Email: "anna@example.org", DisplayName: "Anna"})
	require.NoError(t, err)
	_, err = f.tracking.Create(ctx, ports.TrackedBusiness{UserID: user.ID, BusinessNumber: number, BusinessDetails: details})
	require.NoError(t, err)
}

func TestPredictBlendsTendencyAndLoyalty(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)

	result, err := f.svc.Predict(context.Background(), Request{
		BusinessNumber: "25.3001",
		PersonNumbers:  []int64{4003, 4001, 4002, 4001, 9999},
	})
	require.NoError(t, err)
	require.Len(t, result.Members, 3)
	assert.False(t, result.FromCache)

	for _, m := range result.Members {
		assert.InDelta(t, 0.98, m.Yes+m.No, 1e-9)
		assert.GreaterOrEqual(t, m.Yes, 0.0)
		assert.LessOrEqual(t, m.Yes, 1.0)
		assert.Equal(t, domainprediction.AbstainBaseline, m.Abstain)
		assert.InDelta(t, 0.9, m.Confidence, 1e-9)
	}
	assert.InDelta(t, 0.98, result.Members[0].Yes, 1e-9)
	assert.InDelta(t, 0.0, result.Members[2].Yes, 1e-9)

	require.Len(t, result.Factions, 2)
	assert.Equal(t, "S", result.Factions[0].GroupAbbreviation)
	assert.Equal(t, 2, result.Factions[0].MemberCount)
	assert.Equal(t, domainprediction.OutcomeLikelyAccept, result.Outcome)
}

func TestPredictAuthorGroupBoostsSameGroup(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)

	result, err := f.svc.Predict(context.Background(), Request{
		BusinessNumber:    "25.3001",
		AuthorGroupNumber: 5,
		PersonNumbers:     []int64{4003},
	})
	require.NoError(t, err)
	require.Len(t, result.Members, 1)
	assert.InDelta(t, 0.15*0.98, result.Members[0].Yes, 1e-9)
}

func TestPredictServesFreshCacheUntouched(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)
	ctx := context.Background()
	req := Request{BusinessNumber: "25.3001", PersonNumbers: []int64{4001, 4003}}

	first, err := f.svc.Predict(ctx, req)
	require.NoError(t, err)
	stamp := f.now

	f.now = f.now.Add(23 * time.Hour)
	second, err := f.svc.Predict(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	for _, m := range second.Members {
		assert.True(t, m.PredictionDate.Equal(stamp), "prediction_date moved to %s", m.PredictionDate)
	}
	assert.InDelta(t, first.OverallYes, second.OverallYes, 1e-9)
}

func TestPredictRecomputesStaleCache(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)
	ctx := context.Background()
	req := Request{BusinessNumber: "25.3001", PersonNumbers: []int64{4001}}

	_, err := f.svc.Predict(ctx, req)
	require.NoError(t, err)

	f.now = f.now.Add(25 * time.Hour)
	result, err := f.svc.Predict(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Len(t, result.Members, 1)
	assert.True(t, result.Members[0].PredictionDate.Equal(f.now))
}

func TestPredictRecomputesWhenCacheIsIncomplete(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)
	ctx := context.Background()

	_, err := f.svc.Predict(ctx, Request{BusinessNumber: "25.3001", PersonNumbers: []int64{4001}})
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	result, err := f.svc.Predict(ctx, Request{BusinessNumber: "25.3001", PersonNumbers: []int64{4001, 4002}})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	for _, m := range result.Members {
		assert.True(t, m.PredictionDate.Equal(f.now))
	}
}

func TestPredictWithoutMembersIsUncertain(t *testing.T) {
	f := setupFixture(t)

	result, err := f.svc.Predict(context.Background(), Request{BusinessNumber: "25.3001"})
	require.NoError(t, err)
	assert.Empty(t, result.Members)
	assert.Equal(t, 0.5, result.OverallYes)
	assert.Equal(t, domainprediction.OutcomeUncertain, result.Outcome)
}

func TestPredictForBusinessUsesCommitteeSeats(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)
	ctx := context.Background()

	f.track(t, "24.3927", parliament.BusinessDetails{FirstCouncil: "Nationalrat", AuthorFaction: "SVP-Fraktion"})
	require.NoError(t, f.committees.UpsertCommittees(ctx, []ports.Committee{{Number: 7, Name: "Kommission für Wirtschaft und Abgaben", Abbreviation: "WAK-N", CouncilNumber: 1}}, f.now))
	require.NoError(t, f.committees.UpsertMemberships(ctx, []ports.CommitteeMembership{
		{PersonNumber: 4003, CommitteeNumber: 7, StartDate: f.now.AddDate(-1, 0, 0)},
	}, f.now))

	f.gateway.preconsultations = []parliament.Preconsultation{
		{CommitteeName: "Unknown", Date: parliament.DateValue{Time: f.now.AddDate(0, -2, 0)}},
		{CommitteeName: "Kommission für Wirtschaft und Abgaben", CommitteeAbbrev: "WAK-N", Date: parliament.DateValue{Time: f.now.AddDate(0, 1, 0)}},
	}

	result, err := f.svc.PredictForBusiness(ctx, "24.3927")
	require.NoError(t, err)
	assert.Equal(t, "WAK-N", result.CommitteeAbbreviation)
	require.Len(t, result.Members, 1)
	assert.Equal(t, int64(4003), result.Members[0].PersonNumber)
	assert.InDelta(t, 0.15*0.98, result.Members[0].Yes, 1e-9)
}

func TestPredictForBusinessFallsBackToFirstCouncil(t *testing.T) {
	f := setupFixture(t)
	seedRoster(t, f)
	ctx := context.Background()

	f.track(t, "24.3927", parliament.BusinessDetails{FirstCouncil: "Nationalrat"})

	result, err := f.svc.PredictForBusiness(ctx, "24.3927")
	require.NoError(t, err)
	assert.Len(t, result.Members, 3)
}

func TestPredictForBusinessRequiresTrackedBusiness(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.PredictForBusiness(context.Background(), "24.3927")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
