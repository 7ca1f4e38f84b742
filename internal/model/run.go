package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type RunStatus string

const (
	RunPending RunStatus = "Pending"
	RunRunning RunStatus = "Running"
	RunSuccess RunStatus = "Success"
	RunFailed  RunStatus = "Failed"
	RunMixed   RunStatus = "Completed with Failure"
)

// Terminal reports whether the status can no longer change.
func (s RunStatus) Terminal() bool {
	return s == RunSuccess || s == RunFailed || s == RunMixed
}

type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerScheduled TriggerType = "scheduled"
)

// ArchiveMain is the live history partition; sealed partitions are numbered
// from 1.
const ArchiveMain = 0

// RunRecord is one trigger's history entry. A plain run reports through the
// flat fields; a time-travel run reports through SubRuns, one per date in the
// range, and the flat status becomes the aggregate rollup.
type RunRecord struct {
	gorm.Model
	RunID       string      `gorm:"not null;uniqueIndex" json:"runId"`
	JobID       uint        `gorm:"not null;index" json:"jobId"`
	Timestamp   time.Time   `gorm:"not null" json:"timestamp"`
	TriggerType TriggerType `gorm:"not null" json:"triggerType"`
	SchedulerID *uint       `json:"schedulerId,omitempty"`
	Status      RunStatus   `gorm:"not null" json:"status"`
	Message     string      `json:"message"`

	FileMaskUsed string     `json:"fileMaskUsed"`
	SourceFiles  StringList `gorm:"type:text" json:"sourceFiles"`
	CopiedFiles  StringList `gorm:"type:text" json:"copiedFiles"`

	TimeTravel bool   `json:"timeTravel"`
	FromDate   string `json:"fromDate,omitempty"`
	ToDate     string `json:"toDate,omitempty"`

	Archive int `gorm:"not null;default:0;index" json:"-"`

	SubRuns []SubRun `gorm:"foreignKey:RunRecordID" json:"dateRuns,omitempty"`
}

// SubRun is one date-scoped execution unit inside a time-travel batch.
type SubRun struct {
	gorm.Model
	RunRecordID  uint       `gorm:"not null;index" json:"-"`
	RunID        string     `gorm:"not null;index" json:"runId"`
	Date         string     `gorm:"not null" json:"date"` // YYYY-MM-DD
	Status       RunStatus  `gorm:"not null" json:"status"`
	Message      string     `json:"message"`
	FileMaskUsed string     `json:"fileMaskUsed"`
	SourceFiles  StringList `gorm:"type:text" json:"sourceFiles"`
	CopiedFiles  StringList `gorm:"type:text" json:"copiedFiles"`
}

// StringList stores a []string as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	return string(data), err
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}
