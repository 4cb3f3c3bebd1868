package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pollboard/internal/domain/vote"
	"pollboard/internal/platform/apperr"
	"pollboard/internal/worker"
)

type voteRequest struct {
	ChoiceID int64 `json:"choice_id"`
}

type resultsResponse struct {
	QuestionID int64         `json:"question_id"`
	Text       string        `json:"text"`
	TotalVotes int64         `json:"total_votes"`
	Choices    []vote.Result `json:"choices"`
}

// @Summary     Vote for a choice
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       id       path  int64        true  "Question ID"
// @Param       request  body  voteRequest  true  "Ballot"
// @Success     302  "redirects to results"
// @Failure     400  {object}  map[string]string  "missing or foreign choice"
// @Failure     403  {object}  map[string]string  "voting closed"
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/questions/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid question id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.ChoiceID == 0 {
		errorResponse(w, apperr.BadRequest("no_selection", "choice_id is required", nil))
		return
	}

	userID := userIDFromCtx(r)

	outcome, err := h.voteSvc.Cast(r.Context(), questionID, req.ChoiceID, userID, h.now())
	if err != nil {
		errorResponse(w, err)
		return
	}

	select {
	case h.voteCh <- worker.VoteEvent{
		QuestionID: questionID,
		ChoiceID:   req.ChoiceID,
		UserID:     userID,
		Outcome:    string(outcome),
	}:
	default:
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/questions/%d/results", questionID))
	writeJSON(w, http.StatusFound, map[string]string{
		"status":  string(outcome),
		"message": "vote recorded",
	})
}

// @Summary     Question results
// @Tags        questions
// @Produce     json
// @Param       id  path  int64  true  "Question ID"
// @Success     200  {object}  resultsResponse
// @Failure     404  {object}  map[string]string  "unknown or unpublished question"
// @Router      /api/v1/questions/{id}/results [get]
func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid question id", err))
		return
	}

	q, res, total, err := h.voteSvc.Results(r.Context(), questionID, h.now())
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		QuestionID: q.ID,
		Text:       q.Text,
		TotalVotes: total,
		Choices:    res,
	})
}
