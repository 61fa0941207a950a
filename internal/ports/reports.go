package ports

// TimelinePoint is one day of reported records.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Stats is the dashboard summary. Timeline covers the 30 most recent
// distinct reporting dates, newest first.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	BySeverity map[string]int64 `json:"bySeverity"`
	BySource   map[string]int64 `json:"bySource"`
	Timeline   []TimelinePoint  `json:"timeline"`
}

// DepartmentStats aggregates one department, ordered by Total descending
// in the bundle. AvgDaysToClose is nil when the department has no closed
// records with both dates.
type DepartmentStats struct {
	Department     string   `json:"department"`
	Total          int64    `json:"total"`
	OpenCount      int64    `json:"openCount"`
	AvgDaysToClose *float64 `json:"avgDaysToClose"`
}

// RootCauseCount is one root-cause category bucket.
type RootCauseCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ClosureBucket is one fixed days-to-close band. The bundle always emits
// all five bands in order, zero counts included.
type ClosureBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

// OverdueNC is the detail row for a non-closed record past its due date.
type OverdueNC struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Severity          string  `json:"severity"`
	Department        *string `json:"department"`
	ResponsiblePerson *string `json:"responsible_person"`
	DueDate           string  `json:"due_date"`
	DaysOverdue       int     `json:"days_overdue"`
}

// Analytics is the reporting bundle. Nullable rates stay nil (JSON null)
// when their denominator is empty.
type Analytics struct {
	AvgDaysToClose      *float64          `json:"avgDaysToClose"`
	OverdueCount        int64             `json:"overdueCount"`
	SLAComplianceRate   *int              `json:"slaComplianceRate"`
	AvgEffectiveness    *float64          `json:"avgEffectiveness"`
	DepartmentBreakdown []DepartmentStats `json:"departmentBreakdown"`
	RootCauseCategories []RootCauseCount  `json:"rootCauseCategories"`
	NCSourceBreakdown   map[string]int64  `json:"ncSourceBreakdown"`
	ClosureDistribution []ClosureBucket   `json:"closureDistribution"`
	OverdueNCs          []OverdueNC       `json:"overdueNCs"`
}
