package models

import "time"

// Login is the credential record linked 1:1 to a Profile.
type Login struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	ProfileID uint       `json:"user_profile_id" gorm:"column:user_profile_id;not null;uniqueIndex"`
	Username  string     `json:"username" gorm:"type:varchar(100);not null;index"`
	Password  string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialised
	LastLogin *time.Time `json:"last_login,omitempty"`
	Profile   *Profile   `json:"-" gorm:"foreignKey:ProfileID"`
}

func (Login) TableName() string { return "user_logins" }

// PrimaryKey returns the store-assigned id.
func (l Login) PrimaryKey() uint { return l.ID }
