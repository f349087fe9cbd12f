package handler

import (
	"encoding/json"
	"net/http"

	"codejudge/internal/api/middleware"
	"codejudge/internal/app/service"
	"codejudge/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterRoutes hangs the submission endpoints under /problems/{problemID}
// and expects the router to already require authentication. Submit blocks
// until the verdict is known, so the response carries the final status rather
// than a 202.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{problemID}/submit", h.submit)
	r.Get("/{problemID}/submissions/{submissionID}", h.getSubmission)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	verdict, err := h.submissionService.Submit(r.Context(), userID, chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, verdict)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.submissionService.FetchSubmission(
		r.Context(),
		chi.URLParam(r, "problemID"),
		chi.URLParam(r, "submissionID"),
	)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, verdict)
}
