package model

import "gorm.io/gorm"

const DataSourceADLS = "Azure Data Lake Storage"

// DataSource holds the connection details for a cloud endpoint. Exactly one
// of AccountKey / SASToken is populated at a time. Containers is the
// discovered list, refreshed by an external adapter and read-only here.
type DataSource struct {
	gorm.Model
	// Unique via the repository precheck; see Job.Name.
	Name        string     `gorm:"not null;index" json:"name"`
	Type        string     `gorm:"not null" json:"type"`
	AccountName string     `json:"accountName"`
	AccountKey  string     `json:"accountKey,omitempty"`
	SASToken    string     `json:"sasToken,omitempty"`
	Container   string     `json:"container"`
	Containers  StringList `gorm:"type:text" json:"containers"`
}
