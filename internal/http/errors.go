package api

import (
	"database/sql"
	"errors"
	"net/http"

	"pollboard/internal/domain/question"
	"pollboard/internal/domain/user"
	"pollboard/internal/domain/vote"
	"pollboard/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, user.ErrInvalidRole):
		return apperr.BadRequest("invalid_role", "invalid role", err)
	case errors.Is(err, question.ErrNotFound):
		return apperr.NotFound("question_not_found", "question not found", err)
	case errors.Is(err, question.ErrTextRequired):
		return apperr.BadRequest("text_required", "question text required", err)
	case errors.Is(err, question.ErrTooFewChoices):
		return apperr.BadRequest("too_few_choices", "question must have at least 2 choices", err)
	case errors.Is(err, question.ErrInvalidDates):
		return apperr.BadRequest("invalid_dates", "end_date must not precede pub_date", err)
	case errors.Is(err, vote.ErrVotingClosed):
		return apperr.Forbidden("voting_closed", "voting is closed for this question", err)
	case errors.Is(err, vote.ErrChoiceNotInQuestion):
		return apperr.BadRequest("invalid_choice", "choice does not belong to question", err)
	case errors.Is(err, vote.ErrDuplicateVote):
		return apperr.Conflict("duplicate_vote", "a vote for this question already exists", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
