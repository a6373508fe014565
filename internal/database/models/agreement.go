package models

import "time"

// Agreement records a subject's answer to one terms version. Subjects are
// polymorphic: any entity exposing AgreementSubject can be recorded.
type Agreement struct {
	Base
	SubjectType  string     `gorm:"not null;uniqueIndex:idx_agreements_subject_version" json:"subject_type"`
	SubjectID    uint       `gorm:"not null;uniqueIndex:idx_agreements_subject_version" json:"-"`
	TermsVersion string     `gorm:"not null;uniqueIndex:idx_agreements_subject_version" json:"terms_version"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt   *time.Time `json:"declined_at,omitempty"`
}

func (Agreement) TableName() string {
	return "agreements"
}
