package model

type NonConformance struct {
	ID                      int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Type                    string  `gorm:"column:type;type:text;not null;default:NC"`
	Title                   string  `gorm:"column:title;type:text;not null"`
	Description             string  `gorm:"column:description;type:text;not null"`
	DateReported            string  `gorm:"column:date_reported;type:text;not null"`
	Status                  string  `gorm:"column:status;type:text;not null;index"`
	Severity                string  `gorm:"column:severity;type:text;not null;index"`
	Category                *string `gorm:"column:category;type:text"`
	Department              *string `gorm:"column:department;type:text"`
	NCSource                *string `gorm:"column:nc_source;type:text"`
	StandardReference       *string `gorm:"column:standard_reference;type:text"`
	ClauseReference         *string `gorm:"column:clause_reference;type:text"`
	RootCause               *string `gorm:"column:root_cause;type:text"`
	RootCauseCategory       *string `gorm:"column:root_cause_category;type:text"`
	CorrectiveActions       *string `gorm:"column:corrective_actions;type:text"`
	PreventiveActions       *string `gorm:"column:preventive_actions;type:text"`
	ResponsiblePerson       *string `gorm:"column:responsible_person;type:text"`
	ResponsiblePersonEmail  *string `gorm:"column:responsible_person_email;type:text"`
	DueDate                 *string `gorm:"column:due_date;type:text"`
	ClosureDate             *string `gorm:"column:closure_date;type:text"`
	EffectivenessCheckDate  *string `gorm:"column:effectiveness_check_date;type:text"`
	EffectivenessScore      *int    `gorm:"column:effectiveness_score"`
	EffectivenessNotes      *string `gorm:"column:effectiveness_notes;type:text"`
	NeedsEffectivenessCheck bool    `gorm:"column:needs_effectiveness_check;not null;default:0"`
	Notes                   *string `gorm:"column:notes;type:text"`
	CreatedAt               string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt               string  `gorm:"column:updated_at;type:text;not null"`

	Comments []Comment `gorm:"foreignKey:NCID;constraint:OnDelete:CASCADE"`
}

func (NonConformance) TableName() string {
	return "non_conformances"
}
