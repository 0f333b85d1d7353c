package repositories

import (
	"errors"

	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/types"
	"gorm.io/gorm"
)

// CompositionRepository persists compositions together with their note
// sequences. Every multi-row mutation runs in a single transaction so a
// reader never observes a composition with a partial note list.
type CompositionRepository struct {
	DB *gorm.DB
}

// Save persists a composition and its full note list, all or nothing.
// GORM creates the note rows in slice order inside the transaction, so
// ascending sequence_id reproduces the caller's insertion order.
func (r *CompositionRepository) Save(composition *models.Composition) (*models.Composition, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(composition).Error
	})
	if err != nil {
		return nil, err
	}
	return composition, nil
}

// FindByID returns a composition with its notes in insertion order, or
// types.ErrNotFound.
func (r *CompositionRepository) FindByID(id uint64) (*models.Composition, error) {
	var composition models.Composition
	err := r.DB.
		Preload("NoteSequences", func(db *gorm.DB) *gorm.DB {
			return db.Order("note_sequences.sequence_id ASC")
		}).
		First(&composition, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &composition, nil
}

// FindByUser returns all compositions owned by the user, ordered by id so
// the listing is deterministic for a given state.
func (r *CompositionRepository) FindByUser(user *models.User) ([]models.Composition, error) {
	var compositions []models.Composition
	err := r.DB.
		Preload("NoteSequences", func(db *gorm.DB) *gorm.DB {
			return db.Order("note_sequences.sequence_id ASC")
		}).
		Where("user_id = ?", user.UserID).
		Order("compositions.composition_id ASC").
		Find(&compositions).Error
	if err != nil {
		return nil, err
	}
	return compositions, nil
}

// Delete removes a composition and all of its note sequences atomically.
// The cascade is issued explicitly so no orphan rows remain even on
// databases where the foreign key constraint is not enforced.
func (r *CompositionRepository) Delete(composition *models.Composition) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("composition_id = ?", composition.CompositionID).
			Delete(&models.NoteSequence{}).Error; err != nil {
			return err
		}
		return tx.Delete(composition).Error
	})
}
