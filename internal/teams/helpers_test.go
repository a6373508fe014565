package teams_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/internal/testutil"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGuard struct {
	exceeded  map[teams.Quota]bool
	protected map[string]bool
}

func (g *fakeGuard) QuotaExceeded(_ context.Context, q teams.Quota, _ uint) (bool, error) {
	return g.exceeded[q], nil
}

func (g *fakeGuard) LimitMessage(q teams.Quota) string {
	return "Demo limit reached: " + string(q)
}

func (g *fakeGuard) IsProtectedAccount(email string) bool {
	return g.protected[email]
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []models.Invitation
	err   error
}

func (n *recordingNotifier) InvitationIssued(_ context.Context, inv *models.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, *inv)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

var errDeliveryFailed = errors.New("delivery failed")

func newService(db *gorm.DB, opts teams.Options) *teams.Service {
	return teams.NewService(db, util.NewDiscardLogger(), opts)
}

// fixture is a team with one user per role.
type fixture struct {
	db     *gorm.DB
	svc    *teams.Service
	team   *models.Team
	owner  *models.User
	admin  *models.User
	member *models.User
}

func newFixture(t *testing.T, opts teams.Options) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Olive Owner")
	admin := testutil.CreateTestUser(t, db, "Adam Admin")
	member := testutil.CreateTestUser(t, db, "Mia Member")

	team := testutil.CreateTestTeam(t, db, owner, "Acme")
	testutil.AddTestMember(t, db, team, admin, models.RoleAdmin)
	testutil.AddTestMember(t, db, team, member, models.RoleMember)

	return &fixture{
		db:     db,
		svc:    newService(db, opts),
		team:   team,
		owner:  owner,
		admin:  admin,
		member: member,
	}
}

func (f *fixture) role(t *testing.T, user *models.User) models.Role {
	t.Helper()
	var m models.Membership
	err := f.db.Where("team_id = ? AND user_id = ?", f.team.ID, user.ID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ""
	}
	require.NoError(t, err)
	return m.Role
}

func (f *fixture) reloadTeam(t *testing.T) *models.Team {
	t.Helper()
	var team models.Team
	require.NoError(t, f.db.First(&team, f.team.ID).Error)
	return &team
}

// assertSingleOwner checks that exactly one membership holds the owner role
// and that it belongs to the recorded owner.
func assertSingleOwner(t *testing.T, db *gorm.DB, teamID uint) {
	t.Helper()

	var team models.Team
	require.NoError(t, db.First(&team, teamID).Error)
	require.NotNil(t, team.OwnerID)

	var owners []models.Membership
	require.NoError(t, db.Where("team_id = ? AND role = ?", teamID, models.RoleOwner).Find(&owners).Error)
	require.Len(t, owners, 1)
	require.Equal(t, *team.OwnerID, owners[0].UserID)
}

var errInjected = errors.New("injected failure")

// failStatement makes the nth create, update or delete against table fail
// before it reaches the database.
func failStatement(t *testing.T, db *gorm.DB, kind, table string, nth int) {
	t.Helper()

	seen := 0
	fn := func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		seen++
		if seen == nth {
			_ = tx.AddError(errInjected)
		}
	}

	name := "test:fail_" + kind + "_" + table
	var err error
	switch kind {
	case "create":
		err = db.Callback().Create().Before("gorm:create").Register(name, fn)
	case "update":
		err = db.Callback().Update().Before("gorm:update").Register(name, fn)
	case "delete":
		err = db.Callback().Delete().Before("gorm:delete").Register(name, fn)
	default:
		t.Fatalf("unknown statement kind %q", kind)
	}
	require.NoError(t, err)
}

// afterFirstUpdate runs fn once, on the transaction of the first successful
// update against table.
func afterFirstUpdate(t *testing.T, db *gorm.DB, table string, fn func(tx *gorm.DB)) {
	t.Helper()

	done := false
	err := db.Callback().Update().After("gorm:update").Register("test:after_update_"+table, func(tx *gorm.DB) {
		if done || tx.Error != nil || tx.Statement.Table != table {
			return
		}
		done = true
		fn(tx.Session(&gorm.Session{NewDB: true}))
	})
	require.NoError(t, err)
}
