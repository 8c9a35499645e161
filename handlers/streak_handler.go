package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
	"github.com/Universesboy/french-streak-app/internal/streak"
	"github.com/Universesboy/french-streak-app/middleware"
	"github.com/Universesboy/french-streak-app/services"
)

const requestTimeout = 5 * time.Second

type StreakHandler struct {
	streakService *services.StreakService
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// storageKey resolves which record a request operates on: the
// authenticated user's uid (synced to the remote store), or the
// X-Device-ID header for anonymous devices (local-only). A request with
// neither gets a generated device ID, echoed back in the response header
// so the client can keep using it.
func storageKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	if uid, ok := middleware.GetUserID(r.Context()); ok && uid != "" {
		return uid, true
	}
	device := r.Header.Get("X-Device-ID")
	if device == "" {
		device = uuid.NewString()
		w.Header().Set("X-Device-ID", device)
	}
	return device, false
}

// mutationResponse is the envelope every mutating endpoint returns: the
// new state plus exactly one human-readable message, and a soft warning
// when the remote sync was skipped over an error.
type mutationResponse struct {
	Message string      `json:"message"`
	Changed bool        `json:"changed"`
	Data    streak.Data `json:"data"`
	Warning string      `json:"warning,omitempty"`
}

func newMutationResponse(res *services.MutationResult) mutationResponse {
	resp := mutationResponse{
		Message: res.Message,
		Changed: res.Changed,
		Data:    res.Data,
	}
	if !res.RemoteSynced {
		resp.Warning = "Saved on this device, but syncing to your account failed. We'll retry on your next save."
	}
	return resp
}

// GET /api/v1/streak
func (h *StreakHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	data, err := h.streakService.GetState(ctx, key, synced)
	if err != nil {
		log.Printf("GetState failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}

// PUT /api/v1/streak
func (h *StreakHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	var data streak.Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key, synced := storageKey(w, r)
	res, err := h.streakService.ReplaceState(ctx, key, synced, data)
	if err != nil {
		log.Printf("SaveState failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if !res.RemoteSynced {
		middleware.CountRemoteSyncFailure()
	}
	respondWithJSON(w, http.StatusOK, newMutationResponse(res))
}

// GET /api/v1/streak/can-check-in
func (h *StreakHandler) CanCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	can, err := h.streakService.CanCheckIn(ctx, key, synced)
	if err != nil {
		log.Printf("CanCheckIn failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"canCheckIn": can})
}

// POST /api/v1/streak/check-in
func (h *StreakHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	res, err := h.streakService.CheckIn(ctx, key, synced)
	if err != nil {
		log.Printf("CheckIn failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if res.Changed {
		middleware.CountCheckIn()
	}
	if !res.RemoteSynced {
		middleware.CountRemoteSyncFailure()
	}
	respondWithJSON(w, http.StatusOK, newMutationResponse(res))
}

// POST /api/v1/streak/session/start
func (h *StreakHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	res, err := h.streakService.StartSession(ctx, key, synced)
	if err != nil {
		log.Printf("StartSession failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if res.Changed {
		middleware.CountSessionStart()
	}
	if !res.RemoteSynced {
		middleware.CountRemoteSyncFailure()
	}
	respondWithJSON(w, http.StatusOK, newMutationResponse(res))
}

// POST /api/v1/streak/session/stop
func (h *StreakHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	res, err := h.streakService.StopSession(ctx, key, synced)
	if err != nil {
		log.Printf("StopSession failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if res.Changed {
		middleware.CountSessionStop()
	}
	if !res.RemoteSynced {
		middleware.CountRemoteSyncFailure()
	}
	respondWithJSON(w, http.StatusOK, newMutationResponse(res))
}

// GET /api/v1/streak/session
func (h *StreakHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	status, err := h.streakService.OngoingSession(ctx, key, synced)
	if err != nil {
		log.Printf("GetSession failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

// GET /api/v1/streak/stats
func (h *StreakHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	stats, err := h.streakService.Statistics(ctx, key, synced)
	if err != nil {
		log.Printf("GetStats failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// GET /api/v1/streak/summary/{granularity}
func (h *StreakHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	granularity := mux.Vars(r)["granularity"]

	key, synced := storageKey(w, r)
	summary, err := h.streakService.Summary(ctx, key, synced, granularity)
	if err != nil {
		log.Printf("GetSummary(%s) failed for %s: %v", granularity, key, err)
		respondWithError(w, http.StatusBadRequest, "Unknown summary period. Use daily, weekly, monthly or yearly.")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GET /api/v1/streak/summary/recent
func (h *StreakHandler) GetRecentSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	key, synced := storageKey(w, r)
	summary, err := h.streakService.RecentSummary(ctx, key, synced)
	if err != nil {
		log.Printf("GetRecentSummary failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if summary == nil {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "No study sessions recorded yet."})
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GET /api/v1/streak/summary/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *StreakHandler) GetRangeTotal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	start, err := dateutil.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'start' must be a YYYY-MM-DD date")
		return
	}
	end, err := dateutil.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'end' must be a YYYY-MM-DD date")
		return
	}

	key, synced := storageKey(w, r)
	total, err := h.streakService.RangeTotal(ctx, key, synced, start, end)
	if err != nil {
		log.Printf("GetRangeTotal failed for %s: %v", key, err)
		respondWithError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"start":     dateutil.FormatDate(start),
		"end":       dateutil.FormatDate(end),
		"totalTime": total,
	})
}
