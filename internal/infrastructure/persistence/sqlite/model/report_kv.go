package model

// ReportKV backs the sqlite report cache: one serialized report per key.
type ReportKV struct {
	Key       string  `gorm:"column:key;primaryKey;type:text"`
	Value     string  `gorm:"column:value;type:text;not null"`
	ExpiresAt *string `gorm:"column:expires_at;type:text"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (ReportKV) TableName() string {
	return "report_kv"
}
