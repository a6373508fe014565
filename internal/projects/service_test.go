package projects_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/internal/notifications"
	"github.com/hugh/teamhub/internal/projects"
	"github.com/hugh/teamhub/internal/teams"
	"github.com/hugh/teamhub/internal/testutil"
	"github.com/hugh/teamhub/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type quotaGuard struct {
	teams.NopGuard
	exceeded bool
}

func (g quotaGuard) QuotaExceeded(context.Context, teams.Quota, uint) (bool, error) {
	return g.exceeded, nil
}

func (g quotaGuard) LimitMessage(teams.Quota) string {
	return "Demo limit reached: maximum of 5 projects per team."
}

func newService(db *gorm.DB, guard teams.Guard) *projects.Service {
	logger := util.NewDiscardLogger()
	return projects.NewService(db, logger, guard, notifications.NewService(db, logger))
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newService(db, nil)
	user := testutil.CreateTestUser(t, db, "Pat Writer")

	project, err := svc.Create(ctx, user, projects.CreateInput{Title: "My First Story", Description: strPtr("About things")})
	require.NoError(t, err)

	assert.Equal(t, "My First Story", project.Label)
	assert.Regexp(t, `^my-first-story-[a-z0-9]{6}$`, project.Key)
	assert.Equal(t, models.ProjectDraft, project.Status)
	assert.Equal(t, models.StepIntro, project.CurrentStep)
	require.NotNil(t, project.Description)
	assert.Equal(t, "About things", *project.Description)

	require.Len(t, project.Teams, 1)
	assert.Equal(t, *user.CurrentTeamID, project.Teams[0].ID)

	t.Run("blank title", func(t *testing.T) {
		_, err := svc.Create(ctx, user, projects.CreateInput{Title: "  "})
		assert.ErrorIs(t, err, teams.ErrInvalidOperation)
	})

	t.Run("quota", func(t *testing.T) {
		limited := newService(db, quotaGuard{exceeded: true})
		_, err := limited.Create(ctx, user, projects.CreateInput{Title: "Blocked"})
		require.ErrorIs(t, err, teams.ErrQuotaExceeded)
		assert.Equal(t, "Demo limit reached: maximum of 5 projects per team.", teams.Message(err))
	})
}

func TestList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newService(db, nil)
	user := testutil.CreateTestUser(t, db, "Pat Writer")
	other := testutil.CreateTestUser(t, db, "Someone Else")

	draft, err := svc.Create(ctx, user, projects.CreateInput{Title: "Garden Diary"})
	require.NoError(t, err)
	started, err := svc.Create(ctx, user, projects.CreateInput{Title: "Travel Notes"})
	require.NoError(t, err)
	_, err = svc.SaveResponse(ctx, user, started.PublicID, models.StepIntro, map[string]interface{}{"intro_1": "x"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, projects.CreateInput{Title: "Not Mine"})
	require.NoError(t, err)

	// A project on another team stays hidden while that team is not current.
	side := testutil.CreateTestTeam(t, db, user, "Side Team")
	require.NoError(t, db.Model(user).Update("current_team_id", side.ID).Error)
	user.CurrentTeamID = &side.ID
	_, err = svc.Create(ctx, user, projects.CreateInput{Title: "Side Story"})
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("current_team_id", draft.Teams[0].ID).Error)
	user.CurrentTeamID = &draft.Teams[0].ID

	tests := []struct {
		name   string
		filter projects.ListFilter
		want   []string
	}{
		{"all on current team", projects.ListFilter{}, []string{"Garden Diary", "Travel Notes"}},
		{"status filter", projects.ListFilter{Status: "in_progress"}, []string{"Travel Notes"}},
		{"unknown status ignored", projects.ListFilter{Status: "archived"}, []string{"Garden Diary", "Travel Notes"}},
		{"search", projects.ListFilter{Search: "garden"}, []string{"Garden Diary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.List(ctx, user, tt.filter)
			require.NoError(t, err)

			var labels []string
			for _, p := range list {
				labels = append(labels, p.Label)
			}
			assert.ElementsMatch(t, tt.want, labels)
		})
	}
}

func TestGetUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newService(db, nil)
	user := testutil.CreateTestUser(t, db, "Pat Writer")
	stranger := testutil.CreateTestUser(t, db, "Stranger")

	project, err := svc.Create(ctx, user, projects.CreateInput{Title: "Draft", Description: strPtr("old")})
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		got, err := svc.Get(ctx, user, project.PublicID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, got.ID)

		_, err = svc.Get(ctx, stranger, project.PublicID)
		assert.ErrorIs(t, err, teams.ErrForbidden)

		_, err = svc.Get(ctx, user, uuid.New())
		assert.ErrorIs(t, err, teams.ErrNotFound)
	})

	t.Run("update patches fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, user, project.PublicID, projects.UpdateInput{
			Title:       strPtr("Renamed"),
			Description: strPtr(""),
			Status:      strPtr("in_progress"),
			CurrentStep: strPtr(models.StepSectionB),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Label)
		assert.Nil(t, updated.Description)
		assert.Equal(t, models.ProjectInProgress, updated.Status)
		assert.Equal(t, models.StepSectionB, updated.CurrentStep)
		assert.Equal(t, project.Key, updated.Key)
	})

	t.Run("update rejects bad values", func(t *testing.T) {
		_, err := svc.Update(ctx, user, project.PublicID, projects.UpdateInput{Status: strPtr("published")})
		assert.ErrorIs(t, err, teams.ErrInvalidOperation)

		_, err = svc.Update(ctx, user, project.PublicID, projects.UpdateInput{CurrentStep: strPtr("section-z")})
		assert.ErrorIs(t, err, teams.ErrInvalidOperation)

		_, err = svc.Update(ctx, stranger, project.PublicID, projects.UpdateInput{Title: strPtr("Mine now")})
		assert.ErrorIs(t, err, teams.ErrForbidden)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, stranger, project.PublicID), teams.ErrForbidden)
		require.NoError(t, svc.Delete(ctx, user, project.PublicID))

		var links int64
		db.Model(&models.TeamProject{}).Where("project_id = ?", project.ID).Count(&links)
		assert.Zero(t, links)

		_, err := svc.Get(ctx, user, project.PublicID)
		assert.ErrorIs(t, err, teams.ErrNotFound)
	})
}

func TestSaveResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newService(db, nil)
	user := testutil.CreateTestUser(t, db, "Pat Writer")

	project, err := svc.Create(ctx, user, projects.CreateInput{Title: "Survey"})
	require.NoError(t, err)

	_, err = svc.SaveResponse(ctx, user, project.PublicID, models.StepIntro, map[string]interface{}{"intro_1": "first"})
	require.NoError(t, err)
	_, err = svc.SaveResponse(ctx, user, project.PublicID, models.StepSectionA, map[string]interface{}{"section_a_1": "second"})
	require.NoError(t, err)
	saved, err := svc.SaveResponse(ctx, user, project.PublicID, models.StepIntro, map[string]interface{}{"intro_1": "replaced"})
	require.NoError(t, err)

	assert.Equal(t, models.ProjectInProgress, saved.Status)
	assert.Equal(t, models.StepIntro, saved.CurrentStep)

	var responses map[string]map[string]string
	require.NoError(t, json.Unmarshal(saved.Responses, &responses))
	assert.Equal(t, map[string]map[string]string{
		models.StepIntro:    {"intro_1": "replaced"},
		models.StepSectionA: {"section_a_1": "second"},
	}, responses)

	t.Run("unknown step", func(t *testing.T) {
		_, err := svc.SaveResponse(ctx, user, project.PublicID, "outro", map[string]interface{}{})
		assert.ErrorIs(t, err, teams.ErrInvalidOperation)
	})

	t.Run("other users", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, db, "Stranger")
		_, err := svc.SaveResponse(ctx, stranger, project.PublicID, models.StepIntro, map[string]interface{}{})
		assert.ErrorIs(t, err, teams.ErrForbidden)
	})
}

func TestComplete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	svc := newService(db, nil)
	user := testutil.CreateTestUser(t, db, "Pat Writer")

	project, err := svc.Create(ctx, user, projects.CreateInput{Title: "Annual Review"})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, user, project.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, done.Status)
	assert.Equal(t, models.StepComplete, done.CurrentStep)

	var note models.Notification
	require.NoError(t, db.Where("recipient_id = ? AND type = ?", user.ID, models.NotificationStoryCompleted).First(&note).Error)
	assert.Equal(t, "Story form completed", note.Title)
	assert.Equal(t, `Your story "Annual Review" has been completed.`, note.Content)
	assert.Equal(t, "/dashboard", note.Link)
}
