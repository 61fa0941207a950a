package nc

import (
	"context"
	"strings"

	domainnc "nctrack/internal/domain/nc"
	"nctrack/internal/errs"
	"nctrack/internal/ports"
)

type AddCommentInput struct {
	AuthorName  string  `json:"author_name"`
	CommentText string  `json:"comment_text"`
	CommentTag  *string `json:"comment_tag"`
}

// AddComment appends an investigation note to an existing record.
// Comments are immutable once written; there is no update or delete.
func (s *Service) AddComment(ctx context.Context, ncID int64, input AddCommentInput) (ports.Comment, error) {
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		return ports.Comment{}, validationError("author_name is required")
	}
	text := strings.TrimSpace(input.CommentText)
	if text == "" {
		return ports.Comment{}, validationError("comment_text is required")
	}

	var tag *string
	if input.CommentTag != nil && *input.CommentTag != "" {
		if !domainnc.CommentTag(*input.CommentTag).Valid() {
			return ports.Comment{}, validationError("unknown comment_tag %q", *input.CommentTag)
		}
		tag = input.CommentTag
	}

	if _, found, err := s.repo.GetByID(ctx, ncID); err != nil {
		return ports.Comment{}, errs.Wrap(err, "load non-conformance")
	} else if !found {
		return ports.Comment{}, domainnc.ErrNotFound
	}

	comment, err := s.repo.AddComment(ctx, ports.Comment{
		NCID:        ncID,
		AuthorName:  author,
		CommentText: text,
		CommentTag:  tag,
		CreatedAt:   s.nowStamp(),
	})
	if err != nil {
		return ports.Comment{}, errs.Wrap(err, "add comment")
	}
	return comment, nil
}

// ListComments returns the note trail oldest first.
func (s *Service) ListComments(ctx context.Context, ncID int64) ([]ports.Comment, error) {
	if _, found, err := s.repo.GetByID(ctx, ncID); err != nil {
		return nil, errs.Wrap(err, "load non-conformance")
	} else if !found {
		return nil, domainnc.ErrNotFound
	}

	comments, err := s.repo.ListComments(ctx, ncID)
	if err != nil {
		return nil, errs.Wrap(err, "list comments")
	}
	return comments, nil
}

// CountComments returns the size of the note trail, zero when none.
func (s *Service) CountComments(ctx context.Context, ncID int64) (int64, error) {
	if _, found, err := s.repo.GetByID(ctx, ncID); err != nil {
		return 0, errs.Wrap(err, "load non-conformance")
	} else if !found {
		return 0, domainnc.ErrNotFound
	}

	count, err := s.repo.CountComments(ctx, ncID)
	if err != nil {
		return 0, errs.Wrap(err, "count comments")
	}
	return count, nil
}
