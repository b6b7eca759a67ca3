package models

import "time"

// Profile is the identity record of a user.
type Profile struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Email     string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_user_profiles_email_active,where:deleted_at IS NULL"`
	Fullname  string     `json:"fullname" gorm:"type:varchar(255)"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (Profile) TableName() string { return "user_profiles" }

// PrimaryKey returns the store-assigned id.
func (p Profile) PrimaryKey() uint { return p.ID }

// IsActive reports whether the profile has not been soft-deleted.
func (p Profile) IsActive() bool { return p.DeletedAt == nil }

// Identity is the externally visible view of a profile joined with its login.
type Identity struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Fullname  string     `json:"fullname"`
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ProfileUpdate carries the optional fields of a profile update. Nil means unchanged.
type ProfileUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Fullname *string `json:"fullname" validate:"omitempty,max=255"`
	Username *string `json:"username" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72"`
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.Fullname == nil && u.Username == nil && u.Password == nil
}

// Registration carries the input of a new profile and its login.
type Registration struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Fullname string `json:"fullname" validate:"max=255"`
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}
