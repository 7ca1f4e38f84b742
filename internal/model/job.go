package model

import "gorm.io/gorm"

type LocationType string

const (
	LocationLocal  LocationType = "local"
	LocationShared LocationType = "shared"
	LocationAzure  LocationType = "azure"
)

// Job is a recurring file-copy definition between two locations. Paths and
// masks are templates: they may carry [$NAME] / [#NAME] placeholders that are
// resolved per run.
type Job struct {
	gorm.Model
	// Uniqueness is enforced by the repository precheck, not a DB index: a
	// plain unique index would still hold soft-deleted names and block
	// recreating a job under a deleted job's name.
	Name            string       `gorm:"not null;index" json:"name"`
	SourceType      LocationType `gorm:"not null" json:"sourceType"`
	TargetType      LocationType `gorm:"not null" json:"targetType"`
	Source          string       `gorm:"not null" json:"source"`
	Target          string       `gorm:"not null" json:"target"`
	SourceFileMask  string       `json:"sourceFileMask"`
	TargetFileMask  string       `json:"targetFileMask"`
	SourceAzureID   *uint        `json:"sourceAzureId"`
	TargetAzureID   *uint        `json:"targetAzureId"`
	SourceContainer string       `json:"sourceContainer"`
	TargetContainer string       `json:"targetContainer"`

	TimeTravelEnabled bool   `json:"timeTravelEnabled"`
	TimeTravelFrom    string `json:"timeTravelFrom"` // YYYY-MM-DD, inclusive
	TimeTravelTo      string `json:"timeTravelTo"`   // YYYY-MM-DD, inclusive

	CreatedBy string `json:"createdBy"`
	UpdatedBy string `json:"updatedBy"`

	LocalVariables []Variable `gorm:"foreignKey:JobID" json:"localVariables,omitempty"`
}
