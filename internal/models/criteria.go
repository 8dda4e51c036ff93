package models

import "time"

// CriteriaRowID is the primary key of the single live criteria document.
const CriteriaRowID uint = 1

type Criteria struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Text      string    `gorm:"type:text" json:"criteria"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Criteria) TableName() string {
	return "criteria"
}
