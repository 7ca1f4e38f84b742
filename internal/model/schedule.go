package model

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Schedule fires a job on a recurrence rule. Recurrence holds the
// JSON-encoded rule (see the recurrence package for the tagged encoding);
// a schedule always has exactly one rule variant.
type Schedule struct {
	gorm.Model
	// Unique via the repository precheck; see Job.Name.
	Name       string          `gorm:"not null;index" json:"name"`
	JobID      uint            `gorm:"not null;index" json:"jobId"`
	Paused     bool            `gorm:"not null;default:false" json:"paused"`
	Recurrence json.RawMessage `gorm:"not null;type:text" json:"recurrence"`
}
