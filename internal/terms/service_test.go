package terms_test

import (
	"testing"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/terms"
	"github.com/hugh/teamhub/internal/testutil"
	"github.com/hugh/teamhub/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Current(t *testing.T) {
	svc := terms.NewService(nil, config.TermsConfig{CurrentVersion: "2026-01"})

	current := svc.Current()
	assert.Equal(t, "2026-01", current.Version)
	assert.Equal(t, "Terms of Service", current.Label)
	assert.Nil(t, current.URL)
}

func TestService_Agreements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	svc := terms.NewService(db, config.TermsConfig{CurrentVersion: "v2"})

	user := testutil.CreateTestUser(t, db, "Tess")
	team := testutil.CreateTestTeam(t, db, user, "Acme")

	t.Run("nothing accepted yet", func(t *testing.T) {
		ok, err := svc.HasAcceptedCurrent(ctx, *user)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("decline then accept keeps one row", func(t *testing.T) {
		require.NoError(t, svc.Decline(ctx, *user))

		ok, err := svc.HasAcceptedCurrent(ctx, *user)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, svc.Accept(ctx, *user))

		ok, err = svc.HasAcceptedCurrent(ctx, *user)
		require.NoError(t, err)
		assert.True(t, ok)

		var rows []models.Agreement
		require.NoError(t, db.Where("subject_type = ? AND subject_id = ?", "user", user.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].DeclinedAt)
		assert.NotNil(t, rows[0].AcceptedAt)
	})

	t.Run("subjects are independent", func(t *testing.T) {
		ok, err := svc.HasAcceptedCurrent(ctx, *team)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, svc.Accept(ctx, *team))
		ok, err = svc.HasAcceptedCurrent(ctx, *team)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("a new version requires a new acceptance", func(t *testing.T) {
		next := terms.NewService(db, config.TermsConfig{CurrentVersion: "v3"})

		ok, err := next.HasAcceptedCurrent(ctx, *user)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
