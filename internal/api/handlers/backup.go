package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"package-organizer/internal/platform/obs"
	"package-organizer/internal/services"
)

// BackupHandler serves export downloads and accepts import uploads.
type BackupHandler struct {
	Organizer *services.Organizer
}

func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	doc, filename, err := h.Organizer.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "export failed", obs.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.WarnContext(r.Context(), "write export failed", obs.Error(err))
	}
}

// Import takes the raw backup document as the request body.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	defer r.Body.Close()
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "import document too large")
		return
	}

	res := h.Organizer.Import(r.Context(), doc)
	if res.Rejected {
		writeJSON(w, r, http.StatusBadRequest, toStateResponse(res))
		return
	}
	writeResult(w, r, res)
}
