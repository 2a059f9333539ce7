package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"package-organizer/internal/api/dto"
	"package-organizer/internal/domain"
	"package-organizer/internal/platform/obs"
	"package-organizer/internal/services"
)

// maxBodyBytes bounds intent and import bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "encode failed",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), obs.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeIntent reads exactly one JSON object. An empty body decodes to a zero request.
func decodeIntent(w http.ResponseWriter, r *http.Request) (dto.IntentRequest, bool) {
	var req dto.IntentRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return req, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return req, false
	}

	return req, true
}

func requireNumber(w http.ResponseWriter, r *http.Request, req dto.IntentRequest) (domain.PackageNumber, bool) {
	if req.Number == nil {
		writeError(w, r, http.StatusBadRequest, "number is required")
		return 0, false
	}
	return domain.PackageNumber(*req.Number), true
}

// writeResult renders an intent outcome. Rejected intents answer 422 so the view can show
// the notice inline; everything else is 200, including save failures.
func writeResult(w http.ResponseWriter, r *http.Request, res services.Result) {
	status := http.StatusOK
	if res.Rejected {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, toStateResponse(res))
}

func toStateResponse(res services.Result) dto.StateResponse {
	snap := res.Snapshot

	zones := make([]dto.ZoneResponse, 0, len(snap.Zones))
	for _, z := range snap.Zones {
		zones = append(zones, dto.ZoneResponse{
			ID:        string(z.Spec.ID),
			Name:      z.Spec.Name,
			Class:     z.Spec.DisplayClass,
			Packages:  ints(z.Packages),
			Delivered: ints(z.Delivered),
		})
	}

	notices := make([]dto.NoticeResponse, 0, len(res.Notices))
	for _, n := range res.Notices {
		notices = append(notices, dto.NoticeResponse{Level: string(n.Level), Kind: n.Kind, Message: n.Message})
	}

	return dto.StateResponse{
		Phase:        string(snap.Phase),
		PackageRange: snap.PackageRange,
		RangePresets: snap.RangePresets,
		DarkMode:     snap.DarkMode,
		FirstRun:     res.FirstRun,
		Selection:    ints(snap.Selection),
		Packages:     domain.EncodePackages(snap.Manifest.Packages),
		Delivered:    ints(snap.Manifest.Delivered),
		Zones:        zones,
		Unassigned:   ints(snap.Unassigned),
		Counts: dto.CountsResponse{
			Assigned:  snap.Counts.Assigned,
			Delivered: snap.Counts.Delivered,
			Remaining: snap.Counts.Remaining,
		},
		CanUndo:    snap.CanUndo,
		CanDeliver: snap.CanDeliver,
		Notices:    notices,
	}
}

func ints(ns []domain.PackageNumber) []int {
	out := make([]int, 0, len(ns))
	for _, n := range ns {
		out = append(out, int(n))
	}
	return out
}
