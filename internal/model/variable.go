package model

import "gorm.io/gorm"

type VariableType string

const (
	VariableStatic  VariableType = "static"
	VariableDynamic VariableType = "dynamic"
)

// Variable is a named value referenced from path/mask templates. A nil JobID
// makes it global, otherwise it is local to one job. Dynamic variables hold
// the value of their last evaluation and stay stale until explicitly
// refreshed.
type Variable struct {
	gorm.Model
	JobID      *uint        `gorm:"index" json:"jobId,omitempty"`
	Name       string       `gorm:"not null" json:"name"`
	Type       VariableType `gorm:"not null" json:"type"`
	Value      string       `json:"value"`
	Expression string       `json:"expression,omitempty"`
}

func (v *Variable) Global() bool {
	return v.JobID == nil
}
