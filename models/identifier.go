package models

import "time"

// Identifier common entity envelope. The ID is generated once at creation and
// never reassigned.
type Identifier struct {
	// ID entity ID
	ID string `json:"uuid" gorm:"column:uuid;primaryKey;unique" validate:"required,uuid_rfc4122"`

	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created" gorm:"column:created"`
	// CreatedBy identity of the actor that created the entry
	CreatedBy string `json:"created_by" gorm:"column:created_by;not null" validate:"required"`

	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"modified" gorm:"column:modified"`
	// UpdatedBy identity of the actor that last modified the entry
	UpdatedBy string `json:"modified_by" gorm:"column:modified_by;not null" validate:"required"`
}
