package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"nctrack/internal/errs"
	"nctrack/internal/infrastructure/persistence/sqlite/model"
	"nctrack/internal/ports"
)

type NCRepository struct {
	db *gorm.DB
}

var _ ports.NCRepository = (*NCRepository)(nil)

func NewNCRepository(db *gorm.DB) *NCRepository {
	return &NCRepository{db: db}
}

func (r *NCRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *NCRepository) Create(ctx context.Context, record ports.NonConformance) (ports.NonConformance, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.NonConformance{}, err
	}

	row := toModel(record)
	row.ID = 0
	if err := db.Create(&row).Error; err != nil {
		return ports.NonConformance{}, errs.Wrap(err, "insert non-conformance")
	}
	return fromModel(row), nil
}

func (r *NCRepository) GetByID(ctx context.Context, id int64) (ports.NonConformance, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.NonConformance{}, false, err
	}

	var row model.NonConformance
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.NonConformance{}, false, nil
		}
		return ports.NonConformance{}, false, errs.Wrap(err, "query non-conformance by id")
	}
	return fromModel(row), true, nil
}

// Update persists the full merged record. The usecase layer owns the
// partial-merge and never lets id or created_at drift.
func (r *NCRepository) Update(ctx context.Context, record ports.NonConformance) (ports.NonConformance, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.NonConformance{}, err
	}

	row := toModel(record)
	res := db.Model(&model.NonConformance{}).
		Where("id = ?", row.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return ports.NonConformance{}, errs.Wrap(res.Error, "update non-conformance")
	}
	if res.RowsAffected == 0 {
		return ports.NonConformance{}, errs.Wrapf(gorm.ErrRecordNotFound, "update non-conformance %d", record.ID)
	}
	return record, nil
}

func (r *NCRepository) Delete(ctx context.Context, id int64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	res := db.Where("id = ?", id).Delete(&model.NonConformance{})
	if res.Error != nil {
		return false, errs.Wrap(res.Error, "delete non-conformance")
	}
	return res.RowsAffected > 0, nil
}

func (r *NCRepository) List(ctx context.Context, filter ports.NCFilter) ([]ports.NonConformance, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.NonConformance{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.NCSource != "" {
		query = query.Where("nc_source = ?", filter.NCSource)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		// sqlite LIKE is case-insensitive for ASCII.
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var rows []model.NonConformance
	if err := query.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query non-conformances")
	}

	items := make([]ports.NonConformance, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	return items, nil
}

func (r *NCRepository) EffectivenessDue(ctx context.Context, today string) ([]ports.NonConformance, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.NonConformance
	if err := db.
		Where("needs_effectiveness_check = ?", true).
		Where("effectiveness_check_date <= ?", today).
		Where("effectiveness_score IS NULL OR effectiveness_score = 0").
		Order("effectiveness_check_date asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query effectiveness due list")
	}

	items := make([]ports.NonConformance, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	return items, nil
}

func (r *NCRepository) AddComment(ctx context.Context, comment ports.Comment) (ports.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Comment{}, err
	}

	row := model.Comment{
		NCID:        comment.NCID,
		AuthorName:  comment.AuthorName,
		CommentText: comment.CommentText,
		CommentTag:  comment.CommentTag,
		CreatedAt:   comment.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Comment{}, errs.Wrap(err, "insert comment")
	}
	return fromCommentModel(row), nil
}

func (r *NCRepository) ListComments(ctx context.Context, ncID int64) ([]ports.Comment, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Comment
	if err := db.
		Where("nc_id = ?", ncID).
		Order("created_at asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query comments")
	}

	items := make([]ports.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromCommentModel(row))
	}
	return items, nil
}

func (r *NCRepository) CountComments(ctx context.Context, ncID int64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Comment{}).Where("nc_id = ?", ncID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count comments")
	}
	return count, nil
}

func (r *NCRepository) DeleteComments(ctx context.Context, ncID int64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	res := db.Where("nc_id = ?", ncID).Delete(&model.Comment{})
	if res.Error != nil {
		return 0, errs.Wrap(res.Error, "delete comments")
	}
	return res.RowsAffected, nil
}

func toModel(record ports.NonConformance) model.NonConformance {
	return model.NonConformance{
		ID:                      record.ID,
		Type:                    record.Type,
		Title:                   record.Title,
		Description:             record.Description,
		DateReported:            record.DateReported,
		Status:                  record.Status,
		Severity:                record.Severity,
		Category:                record.Category,
		Department:              record.Department,
		NCSource:                record.NCSource,
		StandardReference:       record.StandardReference,
		ClauseReference:         record.ClauseReference,
		RootCause:               record.RootCause,
		RootCauseCategory:       record.RootCauseCategory,
		CorrectiveActions:       record.CorrectiveActions,
		PreventiveActions:       record.PreventiveActions,
		ResponsiblePerson:       record.ResponsiblePerson,
		ResponsiblePersonEmail:  record.ResponsiblePersonEmail,
		DueDate:                 record.DueDate,
		ClosureDate:             record.ClosureDate,
		EffectivenessCheckDate:  record.EffectivenessCheckDate,
		EffectivenessScore:      record.EffectivenessScore,
		EffectivenessNotes:      record.EffectivenessNotes,
		NeedsEffectivenessCheck: record.NeedsEffectivenessCheck,
		Notes:                   record.Notes,
		CreatedAt:               record.CreatedAt,
		UpdatedAt:               record.UpdatedAt,
	}
}

func fromModel(row model.NonConformance) ports.NonConformance {
	return ports.NonConformance{
		ID:                      row.ID,
		Type:                    row.Type,
		Title:                   row.Title,
		Description:             row.Description,
		DateReported:            row.DateReported,
		Status:                  row.Status,
		Severity:                row.Severity,
		Category:                row.Category,
		Department:              row.Department,
		NCSource:                row.NCSource,
		StandardReference:       row.StandardReference,
		ClauseReference:         row.ClauseReference,
		RootCause:               row.RootCause,
		RootCauseCategory:       row.RootCauseCategory,
		CorrectiveActions:       row.CorrectiveActions,
		PreventiveActions:       row.PreventiveActions,
		ResponsiblePerson:       row.ResponsiblePerson,
		ResponsiblePersonEmail:  row.ResponsiblePersonEmail,
		DueDate:                 row.DueDate,
		ClosureDate:             row.ClosureDate,
		EffectivenessCheckDate:  row.EffectivenessCheckDate,
		EffectivenessScore:      row.EffectivenessScore,
		EffectivenessNotes:      row.EffectivenessNotes,
		NeedsEffectivenessCheck: row.NeedsEffectivenessCheck,
		Notes:                   row.Notes,
		CreatedAt:               row.CreatedAt,
		UpdatedAt:               row.UpdatedAt,
	}
}

func fromCommentModel(row model.Comment) ports.Comment {
	return ports.Comment{
		ID:          row.ID,
		NCID:        row.NCID,
		AuthorName:  row.AuthorName,
		CommentText: row.CommentText,
		CommentTag:  row.CommentTag,
		CreatedAt:   row.CreatedAt,
	}
}
