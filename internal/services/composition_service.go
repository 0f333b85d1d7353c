package services

import (
	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/repositories"
	"github.com/melodyground/backend/internal/types"
	"gorm.io/gorm"
)

// NoteInput is one note event as supplied by the caller. Velocity is a
// pointer so an omitted value can be distinguished from an explicit zero.
type NoteInput struct {
	Timestamp  int64  `json:"timestamp"`
	Note       string `json:"note"`
	Instrument string `json:"instrument"`
	Duration   *int   `json:"duration"`
	Velocity   *int   `json:"velocity"`
}

// CompositionInput is the payload for creating a composition
type CompositionInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Tempo       *int        `json:"tempo"`
	Notes       []NoteInput `json:"notes"`
}

// DefaultVelocity is applied when a note omits its velocity
const DefaultVelocity = 100

// CompositionService is the ownership-enforcement boundary around the
// composition repository. The authenticated user is resolved once per
// request by the middleware and passed in explicitly.
type CompositionService struct {
	compositions *repositories.CompositionRepository
}

func NewCompositionService(db *gorm.DB) *CompositionService {
	return &CompositionService{
		compositions: &repositories.CompositionRepository{DB: db},
	}
}

// List returns all compositions owned by the user
func (s *CompositionService) List(user *models.User) ([]models.Composition, error) {
	return s.compositions.FindByUser(user)
}

// Get returns the composition with the given id if the user owns it.
// A composition owned by someone else yields ErrForbidden, which the
// transport layer presents identically to ErrNotFound so the existence of
// another user's data is never revealed.
func (s *CompositionService) Get(user *models.User, id uint64) (*models.Composition, error) {
	composition, err := s.compositions.FindByID(id)
	if err != nil {
		return nil, err
	}
	if composition.UserID != user.UserID {
		return nil, types.ErrForbidden
	}
	return composition, nil
}

// Create builds a composition owned by the user from the input, preserving
// the supplied note order, and persists the whole graph in one transaction.
func (s *CompositionService) Create(user *models.User, input *CompositionInput) (*models.Composition, error) {
	composition := &models.Composition{
		UserID:      user.UserID,
		Title:       input.Title,
		Description: input.Description,
		Tempo:       *input.Tempo,
	}

	composition.NoteSequences = make([]models.NoteSequence, 0, len(input.Notes))
	for _, note := range input.Notes {
		velocity := DefaultVelocity
		if note.Velocity != nil {
			velocity = *note.Velocity
		}
		composition.NoteSequences = append(composition.NoteSequences, models.NoteSequence{
			Timestamp:  note.Timestamp,
			Note:       note.Note,
			Instrument: note.Instrument,
			Duration:   *note.Duration,
			Velocity:   velocity,
		})
	}

	return s.compositions.Save(composition)
}

// Delete removes the composition and all of its notes after the same
// ownership check Get performs.
func (s *CompositionService) Delete(user *models.User, id uint64) error {
	composition, err := s.Get(user, id)
	if err != nil {
		return err
	}
	return s.compositions.Delete(composition)
}
