package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/services"
)

type AdminHandler struct {
	dataService *services.DataService
}

func NewAdminHandler(dataService *services.DataService) *AdminHandler {
	return &AdminHandler{
		dataService: dataService,
	}
}

// POST /admin/repair/{uid}
func (h *AdminHandler) RepairUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	uid := mux.Vars(r)["uid"]
	if uid == "" {
		respondWithError(w, http.StatusBadRequest, "uid is required")
		return
	}

	repaired, err := h.dataService.RepairUser(ctx, uid, time.Now())
	if err != nil {
		log.Printf("RepairUser failed for %s: %v", uid, err)
		respondWithError(w, http.StatusInternalServerError, "Repair failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User data repaired",
		"data":    repaired,
	})
}

// POST /admin/repair-all
func (h *AdminHandler) RepairAll(w http.ResponseWriter, r *http.Request) {
	// Batch repair can outlive the standard per-request timeout.
	ctx := r.Context()

	count, err := h.dataService.RepairAll(ctx, time.Now())
	if err != nil {
		log.Printf("RepairAll failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Repair failed")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Repair complete",
		"updatedCount": count,
	})
}
