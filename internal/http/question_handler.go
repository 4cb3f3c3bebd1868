package api

import (
	"encoding/json"
	"net/http"
	"time"

	"pollboard/internal/domain/question"
	"pollboard/internal/platform/apperr"
)

type createQuestionRequest struct {
	Text    string   `json:"text"`
	PubDate *string  `json:"pub_date"`
	EndDate *string  `json:"end_date"`
	Choices []string `json:"choices"`
}

type questionListItem struct {
	question.Question
	RecentlyPublished bool `json:"recently_published"`
}

// @Summary     List published questions
// @Tags        questions
// @Produce     json
// @Success     200  {array}  questionListItem
// @Router      /api/v1/questions [get]
func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	questions, err := h.questionSvc.ListPublished(r.Context(), now)
	if err != nil {
		errorResponse(w, err)
		return
	}

	items := make([]questionListItem, 0, len(questions))
	for i := range questions {
		items = append(items, questionListItem{
			Question:          questions[i],
			RecentlyPublished: question.WasPublishedRecently(&questions[i], now),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// @Summary     Question detail with choices
// @Tags        questions
// @Produce     json
// @Param       id  path  int64  true  "Question ID"
// @Success     200  {object}  map[string]any
// @Failure     403  {object}  map[string]string  "voting closed"
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/questions/{id} [get]
func (h *Handler) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid id", err))
		return
	}

	q, choices, err := h.questionSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	if !question.CanVote(q, h.now()) {
		errorResponse(w, apperr.Forbidden("voting_closed", "voting is closed for this question", nil))
		return
	}

	resp := map[string]any{
		"question": q,
		"choices":  choices,
	}

	// Surface the caller's current vote so the client can preselect it.
	if userID := userIDFromCtx(r); userID != 0 {
		prev, err := h.voteSvc.PreviousChoice(r.Context(), userID, id)
		if err != nil {
			errorResponse(w, err)
			return
		}
		if prev != 0 {
			resp["previous_choice"] = prev
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// @Summary     Create a question
// @Tags        questions
// @Security    BearerAuth
// @Accept      json
// @Param       request  body  createQuestionRequest  true  "Question"
// @Success     201  {object}  map[string]int64
// @Failure     400  {object}  map[string]string  "invalid body or dates"
// @Failure     403  {object}  map[string]string  "forbidden"
// @Router      /api/v1/questions [post]
func (h *Handler) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	q := &question.Question{Text: req.Text, EndDate: parseTimePtr(req.EndDate)}
	if t := parseTimePtr(req.PubDate); t != nil {
		q.PubDate = *t
	}

	choices := make([]question.Choice, 0, len(req.Choices))
	for _, text := range req.Choices {
		choices = append(choices, question.Choice{Text: text})
	}

	id, err := h.questionSvc.Create(r.Context(), q, choices)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// @Summary     Delete a question
// @Tags        questions
// @Security    BearerAuth
// @Param       id  path  int64  true  "Question ID"
// @Success     204
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/questions/{id} [delete]
func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid id", err))
		return
	}

	if err := h.questionSvc.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}
