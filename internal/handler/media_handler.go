package handler

import (
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"photovault/internal/middleware"
	"photovault/internal/model"
	"photovault/internal/service"
	"photovault/internal/util"
	"photovault/pkg/apierror"
)

const (
	defaultThumbnailSize = 256
	maxThumbnailSize     = 1024
)

// MediaHandler serves object bytes through the API: proxy downloads for
// clients that cannot follow presigned URLs, server-rendered thumbnails
// and multi-file zip archives.
type MediaHandler struct {
	vault *service.VaultService
}

func NewMediaHandler(vault *service.VaultService) *MediaHandler {
	return &MediaHandler{vault: vault}
}

func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	rec, body, err := h.vault.OpenObject(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	filename := util.SanitizeDownloadFilename(rec.OriginalFilename)
	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if rec.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.FileSize, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; all we can do is log the broken transfer.
		slog.Warn("proxy download aborted", "file_id", rec.ID, "error", err)
	}
}

func (h *MediaHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return
	}

	rec, body, err := h.vault.OpenObject(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	if !util.IsThumbnailMIME(rec.MimeType) {
		writeError(w, apierror.New("UNSUPPORTED_MEDIA", "thumbnails are not available for this format", rec.MimeType, http.StatusUnsupportedMediaType))
		return
	}

	source, _, err := image.Decode(body)
	if err != nil {
		writeError(w, apierror.New("UNSUPPORTED_MEDIA", "stored object could not be decoded", "", http.StatusUnsupportedMediaType))
		return
	}

	thumb := scaleToFit(source, parseSize(r))

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: 80}); err != nil {
		slog.Warn("thumbnail encode aborted", "file_id", rec.ID, "error", err)
	}
}

// Archive streams a zip of the requested files. Authorization runs per
// file inside OpenObject, so a single denied id fails the download
// before any bytes are written.
func (h *MediaHandler) Archive(w http.ResponseWriter, r *http.Request) {
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

	if len(payload.IDs) == 0 || len(payload.IDs) > maxBulkIDs {
		writeError(w, apierror.BadRequest("ids must contain between 1 and 500 entries", "ids"))
		return
	}

	entries := make([]util.ZipEntry, 0, len(payload.IDs))
	for _, id := range payload.IDs {
		// Authorize every id up front; opening is deferred until the
		// archive reaches that entry.
		rec, probe, err := h.vault.OpenObject(r.Context(), caller, id)
		if err != nil {
			writeError(w, err)
			return
		}
		probe.Close()

		fileID := id
		entries = append(entries, util.ZipEntry{
			Name: rec.OriginalFilename,
			Open: func() (io.ReadCloser, error) {
				_, body, err := h.vault.OpenObject(r.Context(), caller, fileID)
				return body, err
			},
		})
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="photovault.zip"`)

	if err := util.StreamZip(w, entries); err != nil {
		slog.Warn("archive download aborted", "error", err)
	}
}

func parseSize(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("size"))
	if raw == "" {
		return defaultThumbnailSize
	}

	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return defaultThumbnailSize
	}
	if size > maxThumbnailSize {
		return maxThumbnailSize
	}
	return size
}

// scaleToFit shrinks the image so its longer edge is at most size,
// never upscaling.
func scaleToFit(source image.Image, size int) image.Image {
	bounds := source.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= size && height <= size {
		return source
	}

	if width > height {
		height = height * size / width
		width = size
	} else {
		width = width * size / height
		height = size
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dest := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dest, dest.Bounds(), source, bounds, draw.Over, nil)
	return dest
}
