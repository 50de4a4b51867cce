package api

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"intent-chat/auth"
	"intent-chat/errors"
	"intent-chat/observability"
	"intent-chat/repositories"
	"intent-chat/services"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type Handler struct {
	authService services.IAuthService
	chatService services.IChatService
	users       repositories.IUserRepository
	ledger      repositories.ILedgerRepository
	monitoring  *observability.MonitoringManager
	log         *slog.Logger
}

func NewHandler(
	authService services.IAuthService,
	chatService services.IChatService,
	users repositories.IUserRepository,
	ledger repositories.ILedgerRepository,
	monitoring *observability.MonitoringManager,
	log *slog.Logger,
) *Handler {
	return &Handler{
		authService: authService,
		chatService: chatService,
		users:       users,
		ledger:      ledger,
		monitoring:  monitoring,
		log:         log,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.monitoring.IncrRegistrations()
	writeJSON(w, http.StatusCreated, map[string]string{
		"token":   string(token),
		"message": "User registered successfully",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.monitoring.IncrLogins()
	writeJSON(w, http.StatusOK, map[string]string{"token": string(token)})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Message         string `json:"message"`
	Response        string `json:"response"`
	PredictedIntent string `json:"predicted_intent"`
	RemainingTokens int64  `json:"remaining_tokens"`
	Lang            string `json:"lang,omitempty"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.monitoring.IncrRejectedValidation()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange, err := h.chatService.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		switch {
		case goerrors.Is(err, errors.ErrMessageRequired), goerrors.Is(err, errors.ErrMessageTooLong):
			h.monitoring.IncrRejectedValidation()
		case goerrors.Is(err, errors.ErrInsufficientCredit):
			h.monitoring.IncrRejectedInsufficient()
		}
		h.writeDomainError(w, err)
		return
	}

	h.monitoring.IncrMessagesProcessed()
	if exchange.Censored {
		h.monitoring.IncrCensoredMessages()
	}
	writeJSON(w, http.StatusOK, sendMessageResponse{
		Message:         exchange.Message,
		Response:        exchange.Response,
		PredictedIntent: exchange.Intent,
		RemainingTokens: exchange.RemainingTokens,
		Lang:            exchange.Lang,
	})
}

type historyRecord struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Lang     string `json:"lang,omitempty"`
	At       string `json:"at"`
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	records, nextCursor, err := h.chatService.History(userID, cursor)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]historyRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, historyRecord{
			ID:       rec.ID.String(),
			Message:  rec.Message,
			Response: rec.Response,
			Intent:   rec.Intent,
			Lang:     rec.Lang,
			At:       rec.At.Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records":     out,
		"next_cursor": nextCursor,
	})
}

type searchHit struct {
	RecordID string  `json:"record_id"`
	Content  string  `json:"content"`
	Intent   string  `json:"intent"`
	Score    float64 `json:"score"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	terms := r.URL.Query().Get("q")
	if terms == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(parsed, maxSearchLimit)
	}

	hits, err := h.chatService.Search(r.Context(), userID, terms, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]searchHit, 0, len(hits))
	for _, hit := range hits {
		out = append(out, searchHit{
			RecordID: hit.RecordID,
			Content:  hit.Content,
			Intent:   hit.Intent,
			Score:    hit.Score,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": out})
}

func (h *Handler) UserDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": user.Username,
		"tokens":   user.Tokens,
	})
}

func (h *Handler) TokenBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	balance, err := h.ledger.Balance(userID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"tokens": balance})
}

func (h *Handler) Monitoring(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitoring.Snapshot())
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
