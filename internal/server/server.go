// Package server wires the stores, handlers, and middleware into a router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/apex/internal/audit"
	"github.com/dukerupert/apex/internal/auth"
	"github.com/dukerupert/apex/internal/backup"
	"github.com/dukerupert/apex/internal/draft"
	"github.com/dukerupert/apex/internal/handler"
	"github.com/dukerupert/apex/internal/kv"
	"github.com/dukerupert/apex/internal/middleware"
	"github.com/dukerupert/apex/internal/model"
	"github.com/dukerupert/apex/internal/reminder"
	"github.com/dukerupert/apex/internal/store"
	ws "github.com/dukerupert/apex/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authSvc  *auth.Service
	auditLog *audit.Log

	authH         *handler.AuthHandler
	recordH       *handler.RecordHandler
	contactH      *handler.ContactHandler
	templateH     *handler.TemplateHandler
	auditH        *handler.AuditHandler
	reminderH     *handler.ReminderHandler
	notificationH *handler.NotificationHandler
	draftH        *handler.DraftHandler
	backupH       *handler.BackupHandler

	scheduler     *reminder.Scheduler
	backupManager *backup.Manager
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

type Config struct {
	PollInterval time.Duration
	Backup       backup.Config
}

func New(db *sql.DB, kvStore kv.Store, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	authSvc := auth.NewService(kvStore, logger.With("component", "auth"))
	auditLog := audit.NewLog(kvStore, authSvc, logger.With("component", "audit"))
	draftCache := draft.NewCache(kvStore, authSvc, logger.With("component", "draft"))

	recordStore := store.NewRecordStore(kvStore, authSvc, auditLog)
	contactStore := store.NewContactStore(kvStore, authSvc, auditLog)
	templateStore := store.NewTemplateStore(kvStore, authSvc, auditLog)
	reminderStore := store.NewReminderStore(kvStore, authSvc, auditLog)
	notificationStore := store.NewNotificationStore(kvStore, authSvc)

	// Fired reminders reach connected clients immediately; offline
	// clients pick them up from the notification store on reconnect.
	scheduler := reminder.NewScheduler(reminderStore, notificationStore, cfg.PollInterval, func(n model.Notification) {
		hub.Broadcast(ws.NotificationEvent(n))
	}, logger.With("component", "scheduler"))

	backupMgr := backup.NewManager(cfg.Backup, db, logger.With("component", "backup"))

	return &Server{
		db:       db,
		hub:      hub,
		authSvc:  authSvc,
		auditLog: auditLog,

		authH:         handler.NewAuthHandler(authSvc, logger.With("component", "auth_handler")),
		recordH:       handler.NewRecordHandler(recordStore, hub),
		contactH:      handler.NewContactHandler(contactStore, hub),
		templateH:     handler.NewTemplateHandler(templateStore, hub),
		auditH:        handler.NewAuditHandler(auditLog),
		reminderH:     handler.NewReminderHandler(reminderStore, hub),
		notificationH: handler.NewNotificationHandler(notificationStore),
		draftH:        handler.NewDraftHandler(draftCache),
		backupH:       handler.NewBackupHandler(backupMgr),

		scheduler:     scheduler,
		backupManager: backupMgr,
		rateLimiter:   middleware.NewRateLimiter(10, time.Minute),
		logger:        logger,
	}
}

// Scheduler returns the reminder scheduler for lifecycle management.
func (s *Server) Scheduler() *reminder.Scheduler {
	return s.scheduler
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	rateLimited := middleware.RateLimit(s.rateLimiter)

	// Public routes
	outerMux.Handle("POST /api/auth/signup", rateLimited(http.HandlerFunc(s.authH.Signup)))
	outerMux.Handle("POST /api/auth/login", rateLimited(http.HandlerFunc(s.authH.Login)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.authSvc)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	mux.HandleFunc("GET /api/records", s.recordH.List)
	mux.HandleFunc("POST /api/records", s.recordH.Save)
	mux.HandleFunc("POST /api/records/batch", s.recordH.SaveBatch)
	mux.HandleFunc("DELETE /api/records/{id}", s.recordH.Delete)

	mux.HandleFunc("GET /api/contacts", s.contactH.List)
	mux.HandleFunc("POST /api/contacts", s.contactH.Save)
	mux.HandleFunc("POST /api/contacts/batch", s.contactH.SaveBatch)
	mux.HandleFunc("DELETE /api/contacts/{id}", s.contactH.Delete)

	mux.HandleFunc("GET /api/templates", s.templateH.List)
	mux.HandleFunc("POST /api/templates", s.templateH.Save)
	mux.HandleFunc("DELETE /api/templates/{id}", s.templateH.Delete)

	mux.HandleFunc("GET /api/logs", s.auditH.List)

	mux.HandleFunc("GET /api/reminders", s.reminderH.List)
	mux.HandleFunc("POST /api/reminders", s.reminderH.Save)
	mux.HandleFunc("POST /api/reminders/{id}/dismiss", s.reminderH.Dismiss)
	mux.HandleFunc("POST /api/reminders/{id}/snooze", s.reminderH.Snooze)

	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", s.notificationH.MarkAllRead)

	mux.HandleFunc("GET /api/drafts/{form}", s.draftH.Get)
	mux.HandleFunc("PUT /api/drafts/{form}", s.draftH.Save)
	mux.HandleFunc("DELETE /api/drafts/{form}", s.draftH.Clear)

	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backup/run", s.backupH.Run)

	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "ws_handler")))
}
