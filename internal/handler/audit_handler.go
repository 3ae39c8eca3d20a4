package handler

import (
	"net/http"

	"photovault/internal/middleware"
	"photovault/internal/model"
	"photovault/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// History returns the caller's own lifecycle history, newest first.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	entries, err := h.audit.History(r.Context(), caller, parseLimit(r, 50, 200))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries, nil)
}
