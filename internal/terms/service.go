package terms

import (
	"context"
	"fmt"
	"time"

	"github.com/hugh/teamhub/internal/database/models"
	"github.com/hugh/teamhub/pkg/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HasAgreements is implemented by every entity that can accept terms.
type HasAgreements interface {
	AgreementSubject() (subjectType string, subjectID uint)
}

var (
	_ HasAgreements = models.User{}
	_ HasAgreements = models.Team{}
)

// Terms describes the version subjects must accept.
type Terms struct {
	Version string  `json:"version"`
	Label   string  `json:"label"`
	URL     *string `json:"url"`
}

type Service struct {
	db  *gorm.DB
	cfg config.TermsConfig
}

func NewService(db *gorm.DB, cfg config.TermsConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Current() Terms {
	t := Terms{Version: s.cfg.CurrentVersion, Label: s.cfg.Label}
	if t.Label == "" {
		t.Label = "Terms of Service"
	}
	if s.cfg.URL != "" {
		url := s.cfg.URL
		t.URL = &url
	}
	return t
}

// HasAcceptedCurrent reports whether subject accepted the current version.
func (s *Service) HasAcceptedCurrent(ctx context.Context, subject HasAgreements) (bool, error) {
	subjectType, subjectID := subject.AgreementSubject()

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Agreement{}).
		Where("subject_type = ? AND subject_id = ? AND terms_version = ? AND accepted_at IS NOT NULL",
			subjectType, subjectID, s.cfg.CurrentVersion).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking agreement: %w", err)
	}
	return count > 0, nil
}

// Accept records acceptance of the current version, replacing an earlier
// decline.
func (s *Service) Accept(ctx context.Context, subject HasAgreements) error {
	now := time.Now()
	return s.record(ctx, subject, &now, nil)
}

// Decline records that subject refused the current version.
func (s *Service) Decline(ctx context.Context, subject HasAgreements) error {
	now := time.Now()
	return s.record(ctx, subject, nil, &now)
}

func (s *Service) record(ctx context.Context, subject HasAgreements, acceptedAt, declinedAt *time.Time) error {
	subjectType, subjectID := subject.AgreementSubject()

	agreement := models.Agreement{
		SubjectType:  subjectType,
		SubjectID:    subjectID,
		TermsVersion: s.cfg.CurrentVersion,
		AcceptedAt:   acceptedAt,
		DeclinedAt:   declinedAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subject_type"},
			{Name: "subject_id"},
			{Name: "terms_version"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"accepted_at", "declined_at", "updated_at"}),
	}).Create(&agreement).Error
	if err != nil {
		return fmt.Errorf("recording agreement: %w", err)
	}
	return nil
}
