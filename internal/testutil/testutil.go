package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamhub/internal/auth"
	"github.com/hugh/teamhub/internal/database"
	"github.com/hugh/teamhub/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection so every statement sees the same memory database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateTestUser creates an active user with a personal team that is also
// the current team.
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        "user-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	personal := &models.Team{
		Label:      name + "'s Team",
		Status:     models.TeamStatusActive,
		IsPersonal: true,
		OwnerID:    &user.ID,
	}
	if err := db.Create(personal).Error; err != nil {
		t.Fatalf("failed to create personal team: %v", err)
	}
	AddTestMember(t, db, personal, user, models.RoleOwner)

	if err := db.Model(user).Update("current_team_id", personal.ID).Error; err != nil {
		t.Fatalf("failed to set current team: %v", err)
	}
	user.CurrentTeamID = &personal.ID

	return user
}

// CreateTestUserWithEmail is CreateTestUser with a fixed address.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := CreateTestUser(t, db, name)
	if err := db.Model(user).Update("email", email).Error; err != nil {
		t.Fatalf("failed to set email: %v", err)
	}
	user.Email = email
	return user
}

// CreateTestTeam creates a non-personal team owned by owner.
func CreateTestTeam(t *testing.T, db *gorm.DB, owner *models.User, label string) *models.Team {
	t.Helper()

	team := &models.Team{
		Label:   label,
		Status:  models.TeamStatusActive,
		OwnerID: &owner.ID,
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}
	AddTestMember(t, db, team, owner, models.RoleOwner)

	return team
}

// AddTestMember attaches user to team with role.
func AddTestMember(t *testing.T, db *gorm.DB, team *models.Team, user *models.User, role models.Role) *models.Membership {
	t.Helper()

	m := &models.Membership{TeamID: team.ID, UserID: user.ID, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	return m
}

// CreateTestInvitation creates a pending invitation that expires after ttl.
// A negative ttl produces an already expired invitation.
func CreateTestInvitation(t *testing.T, db *gorm.DB, team *models.Team, inviter *models.User, email string, role models.Role, ttl time.Duration) *models.Invitation {
	t.Helper()

	inv := &models.Invitation{
		TeamID:      team.ID,
		InvitedByID: inviter.ID,
		Email:       email,
		Token:       uuid.New().String() + uuid.New().String()[:28],
		Role:        role,
		Status:      models.InvitationPending,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.PublicID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	User       *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, user, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db, "Test User")
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		User:       user,
		Token:      token,
	}
}
