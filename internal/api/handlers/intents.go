package handlers

import (
	"net/http"

	"package-organizer/internal/domain"
	"package-organizer/internal/services"
)

// IntentHandler exposes the organizer's intents to a view over HTTP.
type IntentHandler struct {
	Organizer *services.Organizer
}

func (h *IntentHandler) State(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeResult(w, r, h.Organizer.View())
}

// Selection handles select, deselect, toggle and clear, chosen by the "action" query value.
func (h *IntentHandler) Selection(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}

	action := r.URL.Query().Get("action")
	if action == "clear" {
		writeResult(w, r, h.Organizer.ClearSelection(r.Context()))
		return
	}

	n, ok := requireNumber(w, r, req)
	if !ok {
		return
	}

	switch action {
	case "", "toggle":
		writeResult(w, r, h.Organizer.ToggleSelection(r.Context(), n))
	case "select":
		writeResult(w, r, h.Organizer.Select(r.Context(), n))
	case "deselect":
		writeResult(w, r, h.Organizer.Deselect(r.Context(), n))
	default:
		writeError(w, r, http.StatusBadRequest, "action must be one of toggle, select, deselect, clear")
	}
}

// Assign assigns explicit numbers, or the current selection when none are given.
func (h *IntentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}

	if len(req.Numbers) == 0 {
		writeResult(w, r, h.Organizer.AssignSelection(r.Context(), req.Zone))
		return
	}

	numbers := make([]domain.PackageNumber, 0, len(req.Numbers))
	for _, n := range req.Numbers {
		numbers = append(numbers, domain.PackageNumber(n))
	}
	writeResult(w, r, h.Organizer.Assign(r.Context(), numbers, req.Zone))
}

func (h *IntentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}
	n, ok := requireNumber(w, r, req)
	if !ok {
		return
	}
	writeResult(w, r, h.Organizer.Remove(r.Context(), n))
}

// Deliver sets delivered status when "delivered" is given, and toggles it otherwise.
func (h *IntentHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}
	n, ok := requireNumber(w, r, req)
	if !ok {
		return
	}

	if req.Delivered == nil {
		writeResult(w, r, h.Organizer.ToggleDelivered(r.Context(), n))
		return
	}
	writeResult(w, r, h.Organizer.SetDelivered(r.Context(), n, *req.Delivered))
}

func (h *IntentHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeResult(w, r, h.Organizer.Undo(r.Context()))
}

func (h *IntentHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeResult(w, r, h.Organizer.Reset(r.Context()))
}

// Settings changes the route size and/or the theme.
func (h *IntentHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}
	if req.Range == nil && req.DarkMode == nil {
		writeError(w, r, http.StatusBadRequest, "packageRange or darkMode is required")
		return
	}

	var res services.Result
	if req.Range != nil {
		res = h.Organizer.SetRange(r.Context(), *req.Range)
		if res.Rejected {
			writeResult(w, r, res)
			return
		}
	}
	if req.DarkMode != nil {
		dm := h.Organizer.SetDarkMode(r.Context(), *req.DarkMode)
		dm.Notices = append(res.Notices, dm.Notices...)
		res = dm
	}
	writeResult(w, r, res)
}

func (h *IntentHandler) Phase(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := decodeIntent(w, r)
	if !ok {
		return
	}

	switch domain.Phase(req.Phase) {
	case domain.PhaseDelivering:
		writeResult(w, r, h.Organizer.StartDelivery(r.Context()))
	case domain.PhaseAssigning:
		writeResult(w, r, h.Organizer.StartAssigning(r.Context()))
	default:
		writeError(w, r, http.StatusBadRequest, "phase must be assigning or delivering")
	}
}
