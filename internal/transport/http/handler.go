package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/app"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// UserIDHeader carries the authenticated caller's id.
const UserIDHeader = "X-User-ID"

// Handler exposes the quiz use cases over JSON/HTTP.
type Handler struct {
	catalog     *app.CatalogService
	submissions *app.SubmissionService
	rankings    *app.RankingService
	users       *app.UserService
}

func NewHandler(catalog *app.CatalogService, submissions *app.SubmissionService, rankings *app.RankingService, users *app.UserService) *Handler {
	return &Handler{
		catalog:     catalog,
		submissions: submissions,
		rankings:    rankings,
		users:       users,
	}
}

// Routes registers every endpoint on a fresh mux wrapped with request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users/me", h.withUser(h.getMe))
	mux.HandleFunc("GET /users/rankings", h.globalRanking)
	mux.HandleFunc("GET /users/my-ranking", h.withUser(h.myRanking))
	// /users/email/{email}, /users/username/{username} and
	// /users/{testId}/top-performers overlap as ServeMux patterns.
	mux.HandleFunc("GET /users/{first}/{second}", h.usersTwoSegments)

	mux.HandleFunc("POST /tests", h.createTest)
	mux.HandleFunc("GET /tests", h.withUser(h.listTests))
	mux.HandleFunc("GET /tests/{id}", h.withUser(h.getTest))
	mux.HandleFunc("POST /tests/submit", h.withUser(h.submit))

	return logRequests(mux)
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

func (h *Handler) withUser(next userHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}
		next(w, r, userID)
	}
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.users.GetMe(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) usersTwoSegments(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "email":
		user, err := h.users.FindByEmail(r.Context(), second)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case first == "username":
		user, err := h.users.FindByUsername(r.Context(), second)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case second == "top-performers":
		h.topPerformers(w, r, first)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) globalRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.rankings.GlobalRanking(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *Handler) myRanking(w http.ResponseWriter, r *http.Request, userID string) {
	ranking, err := h.rankings.MyRanking(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *Handler) topPerformers(w http.ResponseWriter, r *http.Request, testID string) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	performers, err := h.rankings.TopPerformers(r.Context(), testID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, performers)
}

func (h *Handler) createTest(w http.ResponseWriter, r *http.Request) {
	var test domain.Test
	if !decodeJSON(w, r, &test) {
		return
	}
	created, err := h.catalog.CreateTest(r.Context(), test)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listTests(w http.ResponseWriter, r *http.Request, userID string) {
	tests, err := h.catalog.ListTests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

func (h *Handler) getTest(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := h.catalog.GetTest(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type submitRequest struct {
	TestID  string          `json:"testId"`
	Answers []domain.Answer `json:"answers"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, userID string) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TestID == "" {
		writeError(w, http.StatusBadRequest, "testId is required")
		return
	}
	for _, answer := range req.Answers {
		if len(answer.Answers) == 0 {
			writeError(w, http.StatusBadRequest, "answers must not be empty")
			return
		}
	}
	report, err := h.submissions.Submit(r.Context(), userID, req.TestID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type errorPayload struct {
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted), errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTestNotFound), errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUserNotInRanking):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidUser), errors.Is(err, domain.ErrInvalidTest), errors.Is(err, domain.ErrInvalidQuestionType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %s", message)
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorPayload{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
