package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"photovault/internal/middleware"
	"photovault/internal/model"
	"photovault/internal/service"
	"photovault/pkg/apierror"
)

const maxBulkIDs = 500

// VaultHandler exposes the file lifecycle: upload negotiation, gallery
// and trash views, soft delete, restore, purge and read grants.
type VaultHandler struct {
	vault *service.VaultService
}

func NewVaultHandler(vault *service.VaultService) *VaultHandler {
	return &VaultHandler{vault: vault}
}

func (h *VaultHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	var payload model.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	ticket, err := h.vault.RequestUpload(r.Context(), caller, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, ticket, nil)
}

func (h *VaultHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	var payload model.ConfirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	rec, err := h.vault.ConfirmUpload(r.Context(), caller, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, rec, nil)
}

func (h *VaultHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	sections, err := h.vault.Gallery(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, sections, nil)
}

func (h *VaultHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	files, err := h.vault.ListActive(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, files, nil)
}

func (h *VaultHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	items, err := h.vault.ListTrashed(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, items, nil)
}

func (h *VaultHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	rec, err := h.vault.SoftDelete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rec, nil)
}

func (h *VaultHandler) Restore(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	rec, err := h.vault.Restore(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, rec, nil)
}

func (h *VaultHandler) Purge(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	if err := h.vault.Purge(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"purged": true}, nil)
}

func (h *VaultHandler) BulkSoftDelete(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.vault.BulkSoftDelete)
}

func (h *VaultHandler) BulkRestore(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.vault.BulkRestore)
}

func (h *VaultHandler) BulkPurge(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.vault.BulkPurge)
}

func (h *VaultHandler) bulk(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller model.Caller, ids []string) model.BulkResult) {
	defer r.Body.Close()

	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	var payload model.BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	if len(payload.IDs) == 0 {
		writeError(w, apierror.BadRequest("ids must not be empty", "ids"))
		return
	}
	if len(payload.IDs) > maxBulkIDs {
		writeError(w, apierror.BadRequest("too many ids in one request", "ids"))
		return
	}

	result := op(r.Context(), caller, payload.IDs)

	// Partial failure is still a 200: the response body carries the
	// per-id outcome.
	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *VaultHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	cred, err := h.vault.GetDownloadCredential(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cred, nil)
}

func (h *VaultHandler) GrantRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	defer r.Body.Close()

	var payload model.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	if err := h.vault.GrantRead(r.Context(), caller, chi.URLParam(r, "id"), strings.TrimSpace(payload.UserID)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"granted": true}, nil)
}

func (h *VaultHandler) RevokeRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	if err := h.vault.RevokeRead(r.Context(), caller, chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"revoked": true}, nil)
}

func (h *VaultHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	grants, err := h.vault.ListGrants(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, grants, nil)
}

func parseLimit(r *http.Request, fallback int, max int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
