package ports

import "context"

// NonConformance is the record exchanged between usecases, transports and
// the repository. Optional columns are pointers so "absent" survives the
// round trip to JSON and back. Date fields are ISO-8601 strings.
type NonConformance struct {
	ID                      int64   `json:"id"`
	Type                    string  `json:"type"`
	Title                   string  `json:"title"`
	Description             string  `json:"description"`
	DateReported            string  `json:"date_reported"`
	Status                  string  `json:"status"`
	Severity                string  `json:"severity"`
	Category                *string `json:"category"`
	Department              *string `json:"department"`
	NCSource                *string `json:"nc_source"`
	StandardReference       *string `json:"standard_reference"`
	ClauseReference         *string `json:"clause_reference"`
	RootCause               *string `json:"root_cause"`
	RootCauseCategory       *string `json:"root_cause_category"`
	CorrectiveActions       *string `json:"corrective_actions"`
	PreventiveActions       *string `json:"preventive_actions"`
	ResponsiblePerson       *string `json:"responsible_person"`
	ResponsiblePersonEmail  *string `json:"responsible_person_email"`
	DueDate                 *string `json:"due_date"`
	ClosureDate             *string `json:"closure_date"`
	EffectivenessCheckDate  *string `json:"effectiveness_check_date"`
	EffectivenessScore      *int    `json:"effectiveness_score"`
	EffectivenessNotes      *string `json:"effectiveness_notes"`
	NeedsEffectivenessCheck bool    `json:"needs_effectiveness_check"`
	Notes                   *string `json:"notes"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// Comment is an append-only investigation note owned by one record.
type Comment struct {
	ID          int64   `json:"id"`
	NCID        int64   `json:"nc_id"`
	AuthorName  string  `json:"author_name"`
	CommentText string  `json:"comment_text"`
	CommentTag  *string `json:"comment_tag"`
	CreatedAt   string  `json:"created_at"`
}

// NCFilter narrows a listing. Empty fields mean no constraint; all set
// fields AND together. Search matches title or description, case-insensitive.
type NCFilter struct {
	Status     string
	Severity   string
	Category   string
	Department string
	NCSource   string
	Search     string
}

// NCRepository is the persistence port for records and their comments.
type NCRepository interface {
	Create(ctx context.Context, record NonConformance) (NonConformance, error)
	GetByID(ctx context.Context, id int64) (NonConformance, bool, error)
	Update(ctx context.Context, record NonConformance) (NonConformance, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter NCFilter) ([]NonConformance, error)

	AddComment(ctx context.Context, comment Comment) (Comment, error)
	ListComments(ctx context.Context, ncID int64) ([]Comment, error)
	CountComments(ctx context.Context, ncID int64) (int64, error)
	DeleteComments(ctx context.Context, ncID int64) (int64, error)

	Stats(ctx context.Context) (Stats, error)
	Analytics(ctx context.Context, today string) (Analytics, error)
	EffectivenessDue(ctx context.Context, today string) ([]NonConformance, error)
}
