package models

import "time"

// Document is authored content linked to a Profile through AuthorID.
type Document struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Body      string     `json:"body" gorm:"type:text"`
	AuthorID  uint       `json:"author_id" gorm:"not null;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
	Author    *Profile   `json:"-" gorm:"foreignKey:AuthorID"`
}

func (Document) TableName() string { return "documents" }

// PrimaryKey returns the store-assigned id.
func (d Document) PrimaryKey() uint { return d.ID }

// IsActive reports whether the document has not been soft-deleted.
func (d Document) IsActive() bool { return d.DeletedAt == nil }

// DocumentUpdate carries the optional fields of a document update.
type DocumentUpdate struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=255"`
	Body  *string `json:"body"`
}

// Empty reports whether no field is set.
func (u DocumentUpdate) Empty() bool { return u.Title == nil && u.Body == nil }

// NewDocument carries the input of a document creation.
type NewDocument struct {
	Title    string `json:"title" validate:"required,max=255"`
	Body     string `json:"body"`
	AuthorID uint   `json:"author_id" validate:"required"`
}
