package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const sourceMapAPI = "map_api"

// badRequest is returned to the caller verbatim.
type badRequest string

func (e badRequest) Error() string { return string(e) }

const (
	errUserIDRequired badRequest = "user_id is required"
	errUserIDFormat   badRequest = "Invalid user_id format"
)

type Handler struct {
	subscription subscriptionChecker
	subscribers  subscriberService
	logger       *slog.Logger
}

func NewHandler(subscription subscriptionChecker, subscribers subscriberService, logger *slog.Logger) *Handler {
	return &Handler{
		subscription: subscription,
		subscribers:  subscribers,
		logger:       logger,
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type subscriptionResponse struct {
	Success      bool   `json:"success"`
	UserID       int64  `json:"user_id"`
	IsSubscribed bool   `json:"is_subscribed"`
	Source       string `json:"source"`
}

type subscriberResponse struct {
	Success bool   `json:"success"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Success              bool   `json:"success"`
	Status               string `json:"status"`
	SubscribedUsersCount int    `json:"subscribed_users_count"`
}

type userIDRequest struct {
	UserID json.RawMessage `json:"user_id"`
}

func (h *Handler) handleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	h.subscriptionStatus(w, r)
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	h.subscriptionStatus(w, r)
}

func (h *Handler) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "user_id parameter is required")
		return
	}

	userID, err := parseUserID(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, subscriptionResponse{
		Success:      true,
		UserID:       userID,
		IsSubscribed: h.subscription.CheckSubscription(r.Context(), userID),
		Source:       sourceMapAPI,
	})
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := decodeUserID(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.subscribers.Add(r.Context(), userID); err != nil {
		h.logger.Error("Failed to add legacy subscriber", slog.Int64("user_id", userID), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	respondWithJSON(w, http.StatusOK, subscriberResponse{
		Success: true,
		UserID:  userID,
		Message: "User subscribed successfully",
	})
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := decodeUserID(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := h.subscribers.Remove(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to remove legacy subscriber", slog.Int64("user_id", userID), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	message := "User unsubscribed successfully"
	if !removed {
		message = "User was not subscribed"
	}

	respondWithJSON(w, http.StatusOK, subscriberResponse{
		Success: removed,
		UserID:  userID,
		Message: message,
	})
}

func (h *Handler) handleClearSubscriptions(w http.ResponseWriter, r *http.Request) {
	if _, err := h.subscribers.Clear(r.Context()); err != nil {
		h.logger.Error("Failed to clear legacy subscribers", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "failed to clear subscriptions")
		return
	}

	respondWithJSON(w, http.StatusOK, clearResponse{
		Success: true,
		Message: "All subscriptions cleared",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.subscribers.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count legacy subscribers", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, healthResponse{
		Success:              true,
		Status:               "online",
		SubscribedUsersCount: count,
	})
}

// decodeUserID reads {"user_id": ...} where the id is either a JSON number or
// a numeric string.
func decodeUserID(body io.Reader) (int64, error) {
	var req userIDRequest
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&req); err != nil {
		return 0, errUserIDRequired
	}

	raw := bytes.TrimSpace(req.UserID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errUserIDRequired
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errUserIDFormat
		}
		if s == "" {
			return 0, errUserIDRequired
		}
		return parseUserID(s)
	}

	return parseUserID(string(raw))
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errUserIDFormat
	}
	if id == 0 {
		return 0, errUserIDRequired
	}
	return id, nil
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Success: false, Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
