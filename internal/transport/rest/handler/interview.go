package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"agricensus/internal/engine"
	"agricensus/internal/service"
	"agricensus/internal/transport/rest/middleware"
)

// InterviewHandler handles interview lifecycle endpoints
type InterviewHandler struct {
	interviewSvc *service.InterviewService
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewSvc: interviewSvc}
}

// SubmitAnswerRequest is the request body for answering the current question
type SubmitAnswerRequest struct {
	RawValue string `json:"rawValue"`
}

// Start handles POST /v1/interviews
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	enumeratorID := middleware.GetEnumeratorID(r.Context())
	questionnaireID := middleware.GetQuestionnaireID(r.Context())
	if enumeratorID == "" || questionnaireID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	state, first, err := h.interviewSvc.Start(r.Context(), questionnaireID, enumeratorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPublishedVersion):
			writeError(w, http.StatusConflict, "questionnaire has no published version")
		case errors.Is(err, engine.ErrEmptyQuestionnaire):
			writeError(w, http.StatusConflict, "questionnaire has no questions")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"interview": state,
		"question":  first,
	})
}

// Submit handles POST /v1/interviews/{id}/answers
func (h *InterviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.interviewSvc.Submit(r.Context(), id, req.RawValue)
	if err != nil {
		var invalid *engine.InvalidAnswerError
		switch {
		case errors.As(err, &invalid):
			// The session did not advance; the enumerator corrects and resubmits.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":        invalid.Reason,
				"questionCode": invalid.QuestionCode,
			})
		case errors.Is(err, service.ErrInterviewNotFound):
			writeError(w, http.StatusNotFound, "interview not found")
		case errors.Is(err, engine.ErrSessionFinished):
			writeError(w, http.StatusConflict, "interview already finished")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Abandon handles POST /v1/interviews/{id}/abandon
func (h *InterviewHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.interviewSvc.Abandon(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInterviewNotFound):
			writeError(w, http.StatusNotFound, "interview not found")
		case errors.Is(err, engine.ErrSessionFinished):
			writeError(w, http.StatusConflict, "interview already finished")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// Progress handles GET /v1/interviews/{id}
func (h *InterviewHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, err := h.interviewSvc.Progress(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInterviewNotFound) {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// ListResponses handles GET /v1/questionnaires/{id}/responses
func (h *InterviewHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	states, err := h.interviewSvc.Responses(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": states})
}

// ListNoMatchAudits handles GET /v1/questionnaires/{id}/no-match-audits
func (h *InterviewHandler) ListNoMatchAudits(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	states, err := h.interviewSvc.NoMatchAudits(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"responses": states})
}

// Current handles GET /v1/interviews/{id}/question
func (h *InterviewHandler) Current(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	q, err := h.interviewSvc.CurrentQuestion(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInterviewNotFound) {
			writeError(w, http.StatusNotFound, "interview not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusConflict, "interview is not in progress")
		return
	}

	writeJSON(w, http.StatusOK, q)
}
