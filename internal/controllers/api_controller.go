package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"weschedule/internal/models"
	"weschedule/internal/providers"
	"weschedule/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.AvailabilityServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.AvailabilityServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func splitUsers(r *http.Request) []string {
	raw := r.URL.Query().Get("users")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	users := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			users = append(users, p)
		}
	}
	return users
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, status int, msg string) {
	ac.writeJSON(w, status, map[string]string{"error": msg})
}

// writeComputeError maps service errors: rejected input is the caller's
// fault, anything else is ours.
func (ac *ApiController) writeComputeError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrValidation) || errors.Is(err, models.ErrInvalidWindow) {
		ac.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeComputeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// UpsertAvailability replaces a user's availability record wholesale.
func (ac *ApiController) UpsertAvailability(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.UserAvailability
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if payload.UserID == "" || len(payload.Days) == 0 {
		ac.writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	saved, err := ac.service.Upsert(&payload)
	if err != nil {
		ac.writeComputeError(w, err)
		return
	}

	ac.logger.Infof(providers.TypePost, "Availability saved for user %s", saved.UserID)
	ac.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Saved!",
		"saved":   saved,
	})
}

// GetAvailability returns one user's record, or {} when absent.
func (ac *ApiController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		ac.writeError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	rec, ok := ac.service.Get(userID)
	if !ok {
		ac.writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	ac.writeJSON(w, http.StatusOK, rec)
}

// GetCoverage returns the coverage segments for a set of users and a day.
func (ac *ApiController) GetCoverage(w http.ResponseWriter, r *http.Request) {
	users := splitUsers(r)
	day := models.DayKey(r.URL.Query().Get("day"))
	if day == "" {
		ac.writeError(w, http.StatusBadRequest, "Missing day")
		return
	}

	cacheKey := fmt.Sprintf("cov:%d:%s:%s", ac.service.Revision(), day, strings.Join(users, ","))
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.service.Coverage(users, day)
	})
}

// RecommendSlots returns ranked candidate meeting slots.
func (ac *ApiController) RecommendSlots(w http.ResponseWriter, r *http.Request) {
	users := splitUsers(r)
	day := models.DayKey(r.URL.Query().Get("day"))
	if day == "" {
		ac.writeError(w, http.StatusBadRequest, "Missing day")
		return
	}
	minDuration := cast.ToInt(r.URL.Query().Get("minDuration"))
	topK := cast.ToInt(r.URL.Query().Get("top"))

	cacheKey := fmt.Sprintf("rec:%d:%s:%d:%d:%s", ac.service.Revision(), day, minDuration, topK, strings.Join(users, ","))
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.service.Recommend(users, day, minDuration, topK)
	})
}

// GetUsers lists the user IDs with stored availability.
func (ac *ApiController) GetUsers(w http.ResponseWriter, r *http.Request) {
	cacheKey := fmt.Sprintf("users:%d", ac.service.Revision())
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.service.Users(), nil
	})
}
