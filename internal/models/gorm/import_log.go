package gorm

import "time"

type ImportLog struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Filename        string    `gorm:"column:filename;size:300;not null" json:"filename"`
	ImportType      string    `gorm:"column:import_type;size:20;not null" json:"import_type"`
	RecordsTotal    int       `gorm:"column:records_total;default:0" json:"records_total"`
	RecordsImported int       `gorm:"column:records_imported;default:0" json:"records_imported"`
	RecordsSkipped  int       `gorm:"column:records_skipped;default:0" json:"records_skipped"`
	RecordsErrors   int       `gorm:"column:records_errors;default:0" json:"records_errors"`
	ErrorDetails    *string   `gorm:"column:error_details;type:text" json:"error_details"`
	UploadedBy      *string   `gorm:"column:uploaded_by;size:50" json:"uploaded_by"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (ImportLog) TableName() string {
	return "import_logs"
}
