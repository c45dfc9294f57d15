package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"roomsync/internal/handler"
	"roomsync/internal/middleware"
	"roomsync/internal/store"
)

type Server struct {
	db            *sql.DB
	authH         *handler.AuthHandler
	roomH         *handler.RoomHandler
	choreH        *handler.ChoreHandler
	completionH   *handler.CompletionHandler
	swapH         *handler.SwapHandler
	expenseH      *handler.ExpenseHandler
	announcementH *handler.AnnouncementHandler
	cleaningH     *handler.CleaningHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	roomStore := store.NewRoomStore(db)
	membershipStore := store.NewMembershipStore(db)
	invitationStore := store.NewInvitationStore(db)
	choreStore := store.NewChoreStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	completionStore := store.NewCompletionStore(db)
	swapStore := store.NewSwapStore(db)
	teardownStore := store.NewTeardownStore(db)
	expenseStore := store.NewExpenseStore(db)
	announcementStore := store.NewAnnouncementStore(db)
	cleaningStore := store.NewCleaningStore(db)

	return &Server{
		db:            db,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		roomH:         handler.NewRoomHandler(roomStore, membershipStore, invitationStore, teardownStore, userStore, logger.With("component", "room")),
		choreH:        handler.NewChoreHandler(choreStore, assignmentStore, membershipStore, logger.With("component", "chore")),
		completionH:   handler.NewCompletionHandler(completionStore, choreStore, membershipStore, logger.With("component", "completion")),
		swapH:         handler.NewSwapHandler(swapStore, choreStore, assignmentStore, membershipStore, logger.With("component", "swap")),
		expenseH:      handler.NewExpenseHandler(expenseStore, membershipStore, logger.With("component", "expense")),
		announcementH: handler.NewAnnouncementHandler(announcementStore, membershipStore, logger.With("component", "announcement")),
		cleaningH:     handler.NewCleaningHandler(cleaningStore, membershipStore, logger.With("component", "cleaning")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Room routes
	mux.HandleFunc("POST /api/rooms", s.roomH.Create)
	mux.HandleFunc("GET /api/rooms", s.roomH.ListMine)
	mux.HandleFunc("POST /api/rooms/join", s.roomH.Join)
	mux.HandleFunc("GET /api/rooms/{id}", s.roomH.Get)
	mux.HandleFunc("PATCH /api/rooms/{id}", s.roomH.Update)
	mux.HandleFunc("DELETE /api/rooms/{id}", s.roomH.Delete)
	mux.HandleFunc("POST /api/rooms/{id}/leave", s.roomH.Leave)
	mux.HandleFunc("GET /api/rooms/{id}/members", s.roomH.ListMembers)
	mux.HandleFunc("POST /api/rooms/{id}/members/{memberID}/promote", s.roomH.Promote)
	mux.HandleFunc("POST /api/rooms/{id}/invitations", s.roomH.Invite)
	mux.HandleFunc("GET /api/rooms/{id}/invitations", s.roomH.ListInvitations)

	// Chore routes
	mux.HandleFunc("POST /api/rooms/{id}/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/rooms/{id}/chores", s.choreH.ListByRoom)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PATCH /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/chores/{id}/assignments", s.choreH.Assign)
	mux.HandleFunc("PUT /api/chores/{id}/assignments", s.choreH.ReplaceAssignees)
	mux.HandleFunc("DELETE /api/chores/{id}/assignments/{memberID}", s.choreH.Unassign)

	// Completion and verification routes
	mux.HandleFunc("POST /api/chores/{id}/completions", s.completionH.Submit)
	mux.HandleFunc("GET /api/chores/{id}/completions", s.completionH.ListByChore)
	mux.HandleFunc("POST /api/completions/{id}/verify", s.completionH.Verify)
	mux.HandleFunc("GET /api/rooms/{id}/completions/pending", s.completionH.ListPendingByRoom)

	// Swap routes
	mux.HandleFunc("POST /api/chores/{id}/swaps", s.swapH.Propose)
	mux.HandleFunc("POST /api/swaps/{id}/respond", s.swapH.Respond)
	mux.HandleFunc("POST /api/swaps/{id}/cancel", s.swapH.Cancel)
	mux.HandleFunc("GET /api/rooms/{id}/swaps", s.swapH.ListByRoom)
	mux.HandleFunc("GET /api/rooms/{id}/swaps/inbox", s.swapH.Inbox)

	// Expense routes
	mux.HandleFunc("POST /api/rooms/{id}/expenses", s.expenseH.Create)
	mux.HandleFunc("GET /api/rooms/{id}/expenses", s.expenseH.ListByRoom)
	mux.HandleFunc("POST /api/splits/{id}/settle", s.expenseH.SettleSplit)

	// Announcement routes
	mux.HandleFunc("POST /api/rooms/{id}/announcements", s.announcementH.Create)
	mux.HandleFunc("GET /api/rooms/{id}/announcements", s.announcementH.ListByRoom)
	mux.HandleFunc("PATCH /api/announcements/{id}", s.announcementH.Update)
	mux.HandleFunc("DELETE /api/announcements/{id}", s.announcementH.Delete)

	// Cleaning checklist routes
	mux.HandleFunc("POST /api/rooms/{id}/cleaning-tasks", s.cleaningH.Create)
	mux.HandleFunc("GET /api/rooms/{id}/cleaning-tasks", s.cleaningH.ListByRoom)
	mux.HandleFunc("POST /api/cleaning-tasks/{id}/toggle", s.cleaningH.Toggle)
	mux.HandleFunc("DELETE /api/cleaning-tasks/{id}", s.cleaningH.Delete)
}
