package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"agricensus/internal/model"
	"agricensus/internal/repository"
	"agricensus/internal/service"
)

// QuestionnaireHandler handles questionnaire authoring and publication endpoints
type QuestionnaireHandler struct {
	questionnaireSvc *service.QuestionnaireService
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(questionnaireSvc *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireSvc: questionnaireSvc}
}

// CreateQuestionnaireRequest is the request body for creating a questionnaire
type CreateQuestionnaireRequest struct {
	Titre  string        `json:"titre"`
	Volets []model.Volet `json:"volets"`
}

// SetGotoRequest is the request body for editing one skip edge
type SetGotoRequest struct {
	Version     int    `json:"version"`
	OptionValue string `json:"optionValue"`
	Target      string `json:"target"`
}

// Create handles POST /v1/questionnaires
func (h *QuestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Titre == "" {
		writeError(w, http.StatusBadRequest, "titre is required")
		return
	}

	q := &model.Questionnaire{
		Titre:  req.Titre,
		Volets: req.Volets,
	}
	id, err := h.questionnaireSvc.Create(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"questionnaireId": id})
}

// Get handles GET /v1/questionnaires/{id}
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	q, err := h.questionnaireSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// ListVersions handles GET /v1/questionnaires/{id}/versions
func (h *QuestionnaireHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	versions, err := h.questionnaireSvc.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

// Validate handles GET /v1/questionnaires/{id}/versions/{version}/validation
func (h *QuestionnaireHandler) Validate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	version, err := strconv.Atoi(vars["version"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}

	report, err := h.questionnaireSvc.Validate(r.Context(), vars["id"], version)
	if err != nil {
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "questionnaire version not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Publish handles POST /v1/questionnaires/{id}/publish
func (h *QuestionnaireHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	published, report, err := h.questionnaireSvc.Publish(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrValidationBlocked) {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":  "validation findings block publication",
				"report": report,
			})
			return
		}
		if errors.Is(err, service.ErrQuestionnaireNotFound) {
			writeError(w, http.StatusNotFound, "no draft to publish")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"published": published,
		"report":    report,
	})
}

// SetGoto handles PUT /v1/questionnaires/{id}/questions/{code}/goto
func (h *QuestionnaireHandler) SetGoto(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req SetGotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OptionValue == "" {
		writeError(w, http.StatusBadRequest, "optionValue is required")
		return
	}

	err := h.questionnaireSvc.SetOptionGotoTarget(r.Context(), vars["id"], req.Version, vars["code"], req.OptionValue, req.Target)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			writeError(w, http.StatusConflict, "version conflict, reload and retry")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
