package handlers

import (
	"net/http"
	"time"

	"legalmitra-backend/logger"
	"legalmitra-backend/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// RequireSession resolves the :sid path parameter to a live session and
// refreshes its expiry
func RequireSession(manager *session.Manager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := manager.Get(c.Param("sid"))
		if err != nil {
			writeError(c, log, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// SessionHandler handles HTTP requests for sessions
type SessionHandler struct {
	manager *session.Manager
	log     *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, log *logger.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, log: log}
}

type sessionSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeen   time.Time `json:"last_seen"`
	ExpiresAt  time.Time `json:"expires_at"`
	Cases      int       `json:"cases"`
	ActiveJobs int       `json:"active_jobs"`
	Files      int       `json:"files"`
}

func (h *SessionHandler) summary(sess *session.Session) sessionSummary {
	expires, _ := h.manager.ExpiresAt(sess.ID)
	return sessionSummary{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		LastSeen:   sess.LastSeen(),
		ExpiresAt:  expires,
		Cases:      sess.Cases.Count(),
		ActiveJobs: sess.Jobs.Active(),
		Files:      len(sess.Files.All()),
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess, err := h.manager.Create()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, h.summary(sess))
}

// GetSession handles GET /api/sessions/:sid
func (h *SessionHandler) GetSession(c *gin.Context) {
	respond(c, http.StatusOK, h.summary(currentSession(c)))
}

// DeleteSession handles DELETE /api/sessions/:sid
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.manager.Delete(c.Param("sid")); err != nil {
		writeError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("sid"), "deleted": true})
}
