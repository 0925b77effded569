package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/models"
)

type FormService struct {
	repo      models.SubmissionRepo
	catalog   *catalog.Catalog
	messenger *Messenger
}

func NewFormService(repo models.SubmissionRepo, c *catalog.Catalog, messenger *Messenger) *FormService {
	return &FormService{
		repo:      repo,
		catalog:   c,
		messenger: messenger,
	}
}

// Submit stores exactly one row for a valid form and hands off its message.
// Nothing is written when validation fails.
func (fs *FormService) Submit(ctx context.Context, sub Submission, meta HandoffMeta) (*HandoffResult, error) {
	sub.Normalize()
	if err := models.Validate.Struct(sub); err != nil {
		return nil, apperror.New(http.StatusBadRequest, helpers.FormatValidationError(err), apperror.ErrInvalidInput)
	}
	if err := sub.Check(fs.catalog); err != nil {
		return nil, err
	}

	if err := fs.repo.InsertSubmission(ctx, sub.Table(), sub.Row()); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", sub.Kind(), err)
	}
	return fs.messenger.Handoff(ctx, sub.Kind(), sub.Message(), meta), nil
}

// Contact is handed off without a write.
func (fs *FormService) Contact(ctx context.Context, req *ContactRequest, meta HandoffMeta) (*HandoffResult, error) {
	if err := models.Validate.Struct(req); err != nil {
		return nil, apperror.New(http.StatusBadRequest, helpers.FormatValidationError(err), apperror.ErrInvalidInput)
	}
	return fs.messenger.Handoff(ctx, KindContact, req.Text(), meta), nil
}
