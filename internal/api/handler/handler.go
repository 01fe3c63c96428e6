// Package handler exposes the ledger over HTTP with gin.
package handler

import (
	"flatgripe/backend/internal/auth"
	"flatgripe/backend/internal/complaint"
	"flatgripe/backend/internal/logger"
	"flatgripe/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler містить посилання на сервіси
type Handler struct {
	Complaints *complaint.Service
	Auth       *auth.Service
	Store      storage.Storage
	Log        zerolog.Logger
}

func NewHandler(complaints *complaint.Service, authSvc *auth.Service, store storage.Storage, log zerolog.Logger) *Handler {
	return &Handler{
		Complaints: complaints,
		Auth:       authSvc,
		Store:      store,
		Log:        log.With().Str("component", "http").Logger(),
	}
}

// NewRouter builds the gin engine with request logging and every route registered.
func (h *Handler) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(h.Log))
	h.Routes(r)
	return r
}

// Routes registers the API on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.RequireAuth())
	authed.GET("/complaints", h.ListComplaints)
	authed.POST("/complaints", h.CreateComplaint)
	authed.POST("/complaints/archive", h.ArchiveComplaints)
	authed.PUT("/complaints/:id/resolve", h.ResolveComplaint)
	authed.POST("/complaints/:id/vote", h.VoteComplaint)
	authed.GET("/leaderboard", h.Leaderboard)
	authed.GET("/stats", h.Stats)
}
