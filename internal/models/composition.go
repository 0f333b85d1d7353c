package models

import (
	"time"
)

// Composition represents a titled musical piece with an ordered list of
// note events. The owning user is a back-reference only and is never
// serialized.
type Composition struct {
	CompositionID uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string         `gorm:"type:char(36);not null;index" json:"-"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	Tempo         int            `gorm:"not null" json:"tempo"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	NoteSequences []NoteSequence `gorm:"foreignKey:CompositionID;constraint:OnDelete:CASCADE" json:"noteSequences"`
}

// NoteSequence is one discrete note event within a composition. Rows are
// created in the order the caller supplied them, so ascending sequence_id
// reproduces insertion order on read.
type NoteSequence struct {
	SequenceID    uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CompositionID uint64 `gorm:"not null;index" json:"-"`
	Timestamp     int64  `gorm:"not null" json:"timestamp"`
	Note          string `gorm:"size:10;not null" json:"note"`
	Instrument    string `gorm:"size:50;not null" json:"instrument"`
	Duration      int    `gorm:"not null" json:"duration"`
	Velocity      int    `gorm:"not null" json:"velocity"`
}

// TableName overrides the table name for Composition
func (Composition) TableName() string {
	return "compositions"
}

// TableName overrides the table name for NoteSequence
func (NoteSequence) TableName() string {
	return "note_sequences"
}
