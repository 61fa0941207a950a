package repository

import (
	"context"
	"database/sql"
	"math"
	"sort"

	"nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/infrastructure/persistence/sqlite/model"
	"nctrack/internal/ports"
)

type labelCount struct {
	Label string
	Count int64
}

func (r *NCRepository) Stats(ctx context.Context) (ports.Stats, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Stats{}, err
	}

	stats := ports.Stats{
		ByStatus:   map[string]int64{},
		BySeverity: map[string]int64{},
		BySource:   map[string]int64{},
		Timeline:   []ports.TimelinePoint{},
	}

	if err := db.Model(&model.NonConformance{}).Count(&stats.Total).Error; err != nil {
		return ports.Stats{}, errs.Wrap(err, "count non-conformances")
	}

	var byStatus []labelCount
	if err := db.Model(&model.NonConformance{}).
		Select("status as label, count(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return ports.Stats{}, errs.Wrap(err, "group by status")
	}
	for _, row := range byStatus {
		stats.ByStatus[row.Label] = row.Count
	}

	var bySeverity []labelCount
	if err := db.Model(&model.NonConformance{}).
		Select("severity as label, count(*) as count").
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		return ports.Stats{}, errs.Wrap(err, "group by severity")
	}
	for _, row := range bySeverity {
		stats.BySeverity[row.Label] = row.Count
	}

	var bySource []labelCount
	if err := db.Model(&model.NonConformance{}).
		Select("nc_source as label, count(*) as count").
		Where("nc_source IS NOT NULL AND nc_source != ''").
		Group("nc_source").
		Scan(&bySource).Error; err != nil {
		return ports.Stats{}, errs.Wrap(err, "group by source")
	}
	for _, row := range bySource {
		stats.BySource[row.Label] = row.Count
	}

	if err := db.Model(&model.NonConformance{}).
		Select("date(date_reported) as date, count(*) as count").
		Group("date(date_reported)").
		Order("date desc").
		Limit(30).
		Scan(&stats.Timeline).Error; err != nil {
		return ports.Stats{}, errs.Wrap(err, "group by reported date")
	}

	return stats, nil
}

// closureRow carries just the columns the closure-time math needs.
type closureRow struct {
	DateReported string
	ClosureDate  *string
	DueDate      *string
	Department   *string
	Status       string
}

func (r *NCRepository) Analytics(ctx context.Context, today string) (ports.Analytics, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Analytics{}, err
	}

	bundle := ports.Analytics{
		DepartmentBreakdown: []ports.DepartmentStats{},
		RootCauseCategories: []ports.RootCauseCount{},
		NCSourceBreakdown:   map[string]int64{},
		ClosureDistribution: emptyClosureDistribution(),
		OverdueNCs:          []ports.OverdueNC{},
	}

	var closed []closureRow
	if err := db.Model(&model.NonConformance{}).
		Select("date_reported, closure_date, due_date, department, status").
		Where("status = ?", string(nc.StatusClosed)).
		Scan(&closed).Error; err != nil {
		return ports.Analytics{}, errs.Wrap(err, "query closed records")
	}

	daysSum := 0
	daysN := 0
	slaMet := 0
	slaN := 0
	for _, row := range closed {
		if row.ClosureDate == nil {
			continue
		}
		if days, ok := nc.DaysBetween(row.DateReported, *row.ClosureDate); ok {
			daysSum += days
			daysN++
			addToClosureDistribution(bundle.ClosureDistribution, days)
		}
		if row.DueDate != nil && *row.DueDate != "" {
			slaN++
			if *row.ClosureDate <= *row.DueDate {
				slaMet++
			}
		}
	}
	if daysN > 0 {
		avg := round1(float64(daysSum) / float64(daysN))
		bundle.AvgDaysToClose = &avg
	}
	if slaN > 0 {
		rate := int(math.Round(float64(slaMet) / float64(slaN) * 100))
		bundle.SLAComplianceRate = &rate
	}

	var avgEff sql.NullFloat64
	if err := db.Model(&model.NonConformance{}).
		Select("avg(effectiveness_score)").
		Where("effectiveness_score IS NOT NULL AND effectiveness_score > 0").
		Scan(&avgEff).Error; err != nil {
		return ports.Analytics{}, errs.Wrap(err, "average effectiveness")
	}
	if avgEff.Valid {
		rounded := round1(avgEff.Float64)
		bundle.AvgEffectiveness = &rounded
	}

	departments, err := r.departmentBreakdown(ctx)
	if err != nil {
		return ports.Analytics{}, err
	}
	bundle.DepartmentBreakdown = departments

	var rootCauses []labelCount
	if err := db.Model(&model.NonConformance{}).
		Select("root_cause_category as label, count(*) as count").
		Where("root_cause_category IS NOT NULL AND root_cause_category != ''").
		Group("root_cause_category").
		Order("count desc").
		Scan(&rootCauses).Error; err != nil {
		return ports.Analytics{}, errs.Wrap(err, "group by root cause category")
	}
	for _, row := range rootCauses {
		bundle.RootCauseCategories = append(bundle.RootCauseCategories, ports.RootCauseCount{
			Category: row.Label,
			Count:    row.Count,
		})
	}

	var bySource []labelCount
	if err := db.Model(&model.NonConformance{}).
		Select("nc_source as label, count(*) as count").
		Where("nc_source IS NOT NULL AND nc_source != ''").
		Group("nc_source").
		Scan(&bySource).Error; err != nil {
		return ports.Analytics{}, errs.Wrap(err, "group by source")
	}
	for _, row := range bySource {
		bundle.NCSourceBreakdown[row.Label] = row.Count
	}

	overdue, err := r.overdueDetail(ctx, today)
	if err != nil {
		return ports.Analytics{}, err
	}
	bundle.OverdueNCs = overdue
	bundle.OverdueCount = int64(len(overdue))

	return bundle, nil
}

func (r *NCRepository) departmentBreakdown(ctx context.Context) ([]ports.DepartmentStats, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []closureRow
	if err := db.Model(&model.NonConformance{}).
		Select("date_reported, closure_date, due_date, department, status").
		Where("department IS NOT NULL AND department != ''").
		Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query department records")
	}

	type deptAgg struct {
		total   int64
		open    int64
		daysSum int
		daysN   int
	}
	byDept := map[string]*deptAgg{}
	for _, row := range rows {
		agg := byDept[*row.Department]
		if agg == nil {
			agg = &deptAgg{}
			byDept[*row.Department] = agg
		}
		agg.total++
		if row.Status != string(nc.StatusClosed) {
			agg.open++
			continue
		}
		if row.ClosureDate == nil {
			continue
		}
		if days, ok := nc.DaysBetween(row.DateReported, *row.ClosureDate); ok {
			agg.daysSum += days
			agg.daysN++
		}
	}

	out := make([]ports.DepartmentStats, 0, len(byDept))
	for dept, agg := range byDept {
		stat := ports.DepartmentStats{
			Department: dept,
			Total:      agg.total,
			OpenCount:  agg.open,
		}
		if agg.daysN > 0 {
			avg := round1(float64(agg.daysSum) / float64(agg.daysN))
			stat.AvgDaysToClose = &avg
		}
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

func (r *NCRepository) overdueDetail(ctx context.Context, today string) ([]ports.OverdueNC, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.NonConformance
	if err := db.Model(&model.NonConformance{}).
		Where("status != ?", string(nc.StatusClosed)).
		Where("due_date IS NOT NULL AND due_date != '' AND due_date < ?", today).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query overdue records")
	}

	out := make([]ports.OverdueNC, 0, len(rows))
	for _, row := range rows {
		days, ok := nc.DaysBetween(*row.DueDate, today)
		if !ok {
			continue
		}
		out = append(out, ports.OverdueNC{
			ID:                row.ID,
			Title:             row.Title,
			Severity:          row.Severity,
			Department:        row.Department,
			ResponsiblePerson: row.ResponsiblePerson,
			DueDate:           *row.DueDate,
			DaysOverdue:       days,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysOverdue != out[j].DaysOverdue {
			return out[i].DaysOverdue > out[j].DaysOverdue
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

var closureBucketRanges = []struct {
	label string
	lower int
	upper int // exclusive; -1 means open-ended
}{
	{"< 7 days", 0, 7},
	{"7-14 days", 7, 14},
	{"14-30 days", 14, 30},
	{"30-60 days", 30, 60},
	{"60+ days", 60, -1},
}

func emptyClosureDistribution() []ports.ClosureBucket {
	out := make([]ports.ClosureBucket, 0, len(closureBucketRanges))
	for _, b := range closureBucketRanges {
		out = append(out, ports.ClosureBucket{Range: b.label})
	}
	return out
}

func addToClosureDistribution(buckets []ports.ClosureBucket, days int) {
	for i, b := range closureBucketRanges {
		if days >= b.lower && (b.upper < 0 || days < b.upper) {
			buckets[i].Count++
			return
		}
	}
	// Negative days-to-close (bad data) lands in the first bucket.
	if days < 0 {
		buckets[0].Count++
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
