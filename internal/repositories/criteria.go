package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qahiring/cv-analyzer/internal/models"
)

// CriteriaRepository stores the single, global criteria document.
type CriteriaRepository interface {
	Get() (string, error)
	Save(text string) error
}

type criteriaRepository struct {
	db *gorm.DB
}

func NewCriteriaRepository(db *gorm.DB) CriteriaRepository {
	return &criteriaRepository{db: db}
}

// Get implements CriteriaRepository. Nothing saved yet is not an error.
func (r *criteriaRepository) Get() (string, error) {
	var criteria models.Criteria
	err := r.db.Where("id = ?", models.CriteriaRowID).First(&criteria).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load criteria: %w", err)
	}

	return criteria.Text, nil
}

// Save implements CriteriaRepository. The text replaces the stored document
// wholesale, an empty string included.
func (r *criteriaRepository) Save(text string) error {
	criteria := models.Criteria{
		ID:        models.CriteriaRowID,
		Text:      text,
		UpdatedAt: time.Now(),
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
	}).Create(&criteria).Error
	if err != nil {
		return fmt.Errorf("failed to save criteria: %w", err)
	}

	return nil
}
