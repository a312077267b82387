package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"parlmonitor/internal/domain/parliament"
	"parlmonitor/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "parlmonitor/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "parlmonitor/internal/infrastructure/persistence/sqlite/uow"
	"parlmonitor/internal/ports"
)

// fakeGateway serves canned upstream data. Any number listed in failing
// reports the upstream as unavailable.
type fakeGateway struct {
	mu sync.Mutex

	businesses       map[string]*ports.BusinessInfo
	preconsultations map[string][]parliament.Preconsultation
	slots            map[string][]parliament.SessionSlot
	newBusinesses    []ports.BusinessInfo
	byPrefix         map[string][]ports.BusinessInfo
	failing          map[string]bool

	members    []ports.Parliamentarian
	parties    []ports.Party
	parlGroups []ports.ParlGroup
	cantons    []ports.Canton
	committees []ports.Committee
	seats      []ports.CommitteeMembership

	sessions    []ports.Session
	votes       map[int64][]ports.Vote
	ballots     map[int64][]ports.Voting
	ballotCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		businesses:       make(map[string]*ports.BusinessInfo),
		preconsultations: make(map[string][]parliament.Preconsultation),
		slots:            make(map[string][]parliament.SessionSlot),
		byPrefix:         make(map[string][]ports.BusinessInfo),
		failing:          make(map[string]bool),
		votes:            make(map[int64][]ports.Vote),
		ballots:          make(map[int64][]ports.Voting),
	}
}

func (g *fakeGateway) unavailable(key string) error {
	if g.failing[key] {
		return fmt.Errorf("%w: %s", ports.ErrUpstreamUnavailable, key)
	}
	return nil
}

func (g *fakeGateway) FetchBusiness(_ context.Context, number string) (*ports.BusinessInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.unavailable(number); err != nil {
		return nil, err
	}
	info, ok := g.businesses[number]
	if !ok {
		return nil, nil
	}
	copied := *info
	return &copied, nil
}

func (g *fakeGateway) FetchBusinessEvents(context.Context, string) ([]ports.StatusEntry, error) {
	return nil, nil
}

func (g *fakeGateway) FetchNewBusinesses(context.Context, time.Time) ([]ports.BusinessInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ports.BusinessInfo(nil), g.newBusinesses...), nil
}

func (g *fakeGateway) SearchBusinesses(context.Context, string) ([]ports.BusinessInfo, error) {
	return nil, nil
}

func (g *fakeGateway) FetchBusinessesByPrefix(_ context.Context, prefix string) ([]ports.BusinessInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.unavailable(prefix); err != nil {
		return nil, err
	}
	return g.byPrefix[prefix], nil
}

func (g *fakeGateway) FetchPreconsultations(_ context.Context, number string) ([]parliament.Preconsultation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.unavailable(number); err != nil {
		return nil, err
	}
	return g.preconsultations[number], nil
}

func (g *fakeGateway) FetchSessionSchedule(_ context.Context, number string) ([]parliament.SessionSlot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slots[number], nil
}

func (g *fakeGateway) FetchMembers(context.Context) ([]ports.Parliamentarian, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.unavailable("members"); err != nil {
		return nil, err
	}
	return g.members, nil
}

func (g *fakeGateway) FetchParties(context.Context) ([]ports.Party, error) {
	return g.parties, nil
}

func (g *fakeGateway) FetchParlGroups(context.Context) ([]ports.ParlGroup, error) {
	return g.parlGroups, nil
}

func (g *fakeGateway) FetchCantons(context.Context) ([]ports.Canton, error) {
	return g.cantons, nil
}

func (g *fakeGateway) FetchCommittees(context.Context) ([]ports.Committee, error) {
	return g.committees, nil
}

func (g *fakeGateway) FetchMemberships(context.Context) ([]ports.CommitteeMembership, error) {
	return g.seats, nil
}

func (g *fakeGateway) FetchSessions(context.Context, int64) ([]ports.Session, error) {
	return g.sessions, nil
}

func (g *fakeGateway) FetchVotes(_ context.Context, sessionID int64) ([]ports.Vote, error) {
	return g.votes[sessionID], nil
}

func (g *fakeGateway) FetchBallots(_ context.Context, voteID int64) ([]ports.Voting, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ballotCalls++
	if err := g.unavailable(fmt.Sprintf("vote:%d", voteID)); err != nil {
		return nil, err
	}
	return append([]ports.Voting(nil), g.ballots[voteID]...), nil
}

type sentDigest struct {
	to    ports.Recipient
	items []ports.NotificationItem
}

type recordingNotifier struct {
	sent []sentDigest
}

func (n *recordingNotifier) Notify(_ context.Context, to ports.Recipient, items []ports.NotificationItem) error {
	n.sent = append(n.sent, sentDigest{to: to, items: items})
	return nil
}

type fixture struct {
	db       *gorm.DB
	gateway  *fakeGateway
	notifier *recordingNotifier
	svc      *Service
	now      time.Time

	users      *sqliterepo.UserRepository
	tracking   *sqliterepo.TrackingRepository
	events     *sqliterepo.EventRepository
	alerts     *sqliterepo.AlertRepository
	reference  *sqliterepo.ReferenceRepository
	committees *sqliterepo.CommitteeRepository
	votes      *sqliterepo.VoteRepository
	cache      *sqliterepo.BusinessCacheRepository
	monitoring *sqliterepo.MonitoringRepository
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "monitor.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	f := &fixture{
		db:         db,
		gateway:    newFakeGateway(),
		notifier:   &recordingNotifier{},
		now:        time.Date(2025, 3, 3, 6, 0, 0, 0, time.UTC),
		users:      sqliterepo.NewUserRepository(db),
		tracking:   sqliterepo.NewTrackingRepository(db),
		events:     sqliterepo.NewEventRepository(db),
		alerts:     sqliterepo.NewAlertRepository(db),
		reference:  sqliterepo.NewReferenceRepository(db),
		committees: sqliterepo.NewCommitteeRepository(db),
		votes:      sqliterepo.NewVoteRepository(db),
		cache:      sqliterepo.NewBusinessCacheRepository(db),
		monitoring: sqliterepo.NewMonitoringRepository(db),
	}
	f.svc = NewService(Dependencies{
		Gateway:       f.gateway,
		UoW:           sqliteuow.NewUnitOfWork(db),
		Users:         f.users,
		Tracking:      f.tracking,
		Events:        f.events,
		Alerts:        f.alerts,
		Reference:     f.reference,
		Committees:    f.committees,
		Votes:         f.votes,
		BusinessCache: f.cache,
		Monitoring:    f.monitoring,
		Notifier:      f.notifier,
	}, Options{MinSessionID: 5100})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addUser(t *testing.T, email string, mailEnabled bool) ports.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.users.CreateUser(ctx, ports.User{Email: email, DisplayName: email})
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	if mailEnabled {
		if err := f.users.UpdateNotificationSettings(ctx, user.ID, true, user.AlertTypes); err != nil {
			t.Fatalf("UpdateNotificationSettings() error = %v", err)
		}
		user.EmailAlertsEnabled = true
	}
	return user
}

func (f *fixture) track(t *testing.T, userID uint64, number string, details parliament.BusinessDetails) ports.TrackedBusiness {
	t.Helper()
	row, err := f.tracking.Create(context.Background(), ports.TrackedBusiness{
		UserID:          userID,
		BusinessNumber:  number,
		BusinessDetails: details,
	})
	if err != nil {
		t.Fatalf("track %s error = %v", number, err)
	}
	return row
}
