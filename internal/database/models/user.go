package models

type User struct {
	Base
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Name          string `json:"name"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	CurrentTeamID *uint  `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// AgreementSubject identifies the user in the terms agreement table.
func (u User) AgreementSubject() (string, uint) {
	return "user", u.ID
}
