package handler

import (
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/service"
)

// ProfileHandler handles the off-chain profile CRUD.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// Get handles GET /api/profile/{role}/{address}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.PathValue("address"), domain.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

// Create handles POST /api/profile/{role}/{address}.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := h.profiles.Create(r.PathValue("address"), domain.Role(r.PathValue("role")), update)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, profile)
}

// Update handles PUT /api/profile/{role}/{address}. The verified flag
// is not writable here.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := h.profiles.Update(r.PathValue("address"), domain.Role(r.PathValue("role")), update)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

// Delete handles DELETE /api/profile/{role}/{address}.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.profiles.Delete(r.PathValue("address"), domain.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !removed {
		writeErrorMessage(w, http.StatusNotFound, "profile not found")
		return
	}
	writeMessage(w, http.StatusOK, "profile deleted")
}

// ListByRole handles GET /api/profile/role/{role}.
func (h *ProfileHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ByRole(domain.Role(r.PathValue("role")))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, profiles, len(profiles))
}
