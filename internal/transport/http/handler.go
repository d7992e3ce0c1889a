package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vitadash-reward-service/internal/app"
	"vitadash-reward-service/internal/domain"
)

// Handler exposes the reward engine operations as a JSON API. The
// transport stays thin: it decodes, delegates and maps typed failures
// to status codes.
type Handler struct {
	accounts   *app.Accounts
	quiz       *app.QuizEngine
	ledger     *app.Ledger
	badges     *app.BadgeEngine
	streaks    *app.StreakTracker
	stats      *app.StatsAggregator
	dispatcher *app.Dispatcher
	hub        *NotificationHub
}

// NewHandler wires the API over the app services.
func NewHandler(accounts *app.Accounts, quiz *app.QuizEngine, ledger *app.Ledger, badges *app.BadgeEngine, streaks *app.StreakTracker, stats *app.StatsAggregator, dispatcher *app.Dispatcher, hub *NotificationHub) *Handler {
	return &Handler{
		accounts:   accounts,
		quiz:       quiz,
		ledger:     ledger,
		badges:     badges,
		streaks:    streaks,
		stats:      stats,
		dispatcher: dispatcher,
		hub:        hub,
	}
}

// Register attaches every route to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/quiz/start", h.handleQuizStart)
	mux.HandleFunc("/quiz/answer", h.handleQuizAnswer)
	mux.HandleFunc("/quiz/finish", h.handleQuizFinish)
	mux.HandleFunc("/wallet", h.handleWallet)
	mux.HandleFunc("/streaks", h.handleStreaks)
	mux.HandleFunc("/stats", h.handleStats)
	mux.HandleFunc("/stats/summary", h.handleStatsSummary)
	mux.HandleFunc("/categories", h.handleCategories)
	mux.HandleFunc("/badges", h.handleBadges)
	mux.HandleFunc("/badges/purchase", h.handlePurchase)
	mux.HandleFunc("/notifications", h.handleNotifications)
	mux.HandleFunc("/notifications/read", h.handleNotificationRead)
	mux.HandleFunc("/ws/notifications", h.hub.ServeWS)
}

type registerRequest struct {
	UserID        string `json:"userId"`
	OffsetMinutes int    `json:"offsetMinutes"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) || !requireField(w, req.UserID, "userId") {
		return
	}
	if err := h.accounts.Register(r.Context(), req.UserID, req.OffsetMinutes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": req.UserID})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) || !requireField(w, req.UserID, "userId") {
		return
	}
	result, err := h.accounts.Login(r.Context(), req.UserID, req.OffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type quizStartRequest struct {
	UserID        string          `json:"userId"`
	Category      domain.Category `json:"category"`
	OffsetMinutes int             `json:"offsetMinutes"`
}

func (h *Handler) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	var req quizStartRequest
	if !decode(w, r, &req) || !requireField(w, req.UserID, "userId") {
		return
	}
	result, err := h.quiz.Start(r.Context(), req.UserID, req.Category, req.OffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type quizAnswerRequest struct {
	SessionID     string `json:"sessionId"`
	QuestionIndex int    `json:"questionIndex"`
	OptionID      string `json:"optionId"`
}

func (h *Handler) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if !decode(w, r, &req) || !requireField(w, req.SessionID, "sessionId") {
		return
	}
	if err := h.quiz.SubmitAnswer(r.Context(), req.SessionID, req.QuestionIndex, req.OptionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"recorded": true})
}

type quizFinishRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleQuizFinish(w http.ResponseWriter, r *http.Request) {
	var req quizFinishRequest
	if !decode(w, r, &req) || !requireField(w, req.SessionID, "sessionId") {
		return
	}
	result, err := h.quiz.Finish(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !requireField(w, userID, "userId") {
		return
	}
	balance, err := h.ledger.BalanceOf(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.Wallet{UserID: userID, Balance: balance})
}

func (h *Handler) handleStreaks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !requireField(w, userID, "userId") {
		return
	}
	streaks, err := h.streaks.StreaksFor(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streaks)
}

func (h *Handler) statsRange(w http.ResponseWriter, r *http.Request) (string, domain.Day, domain.Day, int, bool) {
	q := r.URL.Query()
	userID := q.Get("userId")
	if !requireField(w, userID, "userId") {
		return "", "", "", 0, false
	}
	from, err := domain.ParseDay(q.Get("from"))
	if err != nil {
		badRequest(w, "invalid from date")
		return "", "", "", 0, false
	}
	to, err := domain.ParseDay(q.Get("to"))
	if err != nil {
		badRequest(w, "invalid to date")
		return "", "", "", 0, false
	}
	offset := 0
	if raw := q.Get("offsetMinutes"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "invalid offsetMinutes")
			return "", "", "", 0, false
		}
	}
	return userID, from, to, offset, true
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, from, to, offset, ok := h.statsRange(w, r)
	if !ok {
		return
	}
	stats, err := h.stats.StatsFor(r.Context(), userID, from, to, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	userID, from, to, offset, ok := h.statsRange(w, r)
	if !ok {
		return
	}
	summary, err := h.stats.Summary(r.Context(), userID, from, to, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.CategoryCatalog())
}

type badgesResponse struct {
	Catalog []domain.Badge `json:"catalog"`
	Owned   []string       `json:"owned"`
}

func (h *Handler) handleBadges(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	catalog, err := h.badges.Catalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := badgesResponse{Catalog: catalog}
	if userID != "" {
		owned, err := h.badges.OwnedBy(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Owned = owned
	}
	writeJSON(w, http.StatusOK, resp)
}

type purchaseRequest struct {
	UserID  string `json:"userId"`
	BadgeID string `json:"badgeId"`
}

func (h *Handler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !decode(w, r, &req) || !requireField(w, req.UserID, "userId") || !requireField(w, req.BadgeID, "badgeId") {
		return
	}
	if err := h.badges.Purchase(r.Context(), req.UserID, req.BadgeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"badgeId": req.BadgeID})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !requireField(w, userID, "userId") {
		return
	}
	notifications, err := h.dispatcher.NotificationsFor(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type markReadRequest struct {
	UserID         string `json:"userId"`
	NotificationID string `json:"notificationId"`
}

func (h *Handler) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if !decode(w, r, &req) || !requireField(w, req.UserID, "userId") || !requireField(w, req.NotificationID, "notificationId") {
		return
	}
	if err := h.dispatcher.MarkRead(r.Context(), req.UserID, req.NotificationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

type errorResponse struct {
	Error string `json:"error"`
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

func requireField(w http.ResponseWriter, value, name string) bool {
	if value == "" {
		badRequest(w, "missing "+name)
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAlreadyCompletedToday),
		errors.Is(err, domain.ErrAlreadyFinished),
		errors.Is(err, domain.ErrAlreadyOwned),
		errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrBadgeNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotPurchasable),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
