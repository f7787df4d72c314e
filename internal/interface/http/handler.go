package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/auth"
	"github.com/yanqian/projecthub/internal/domain/timelog"
	apperrors "github.com/yanqian/projecthub/pkg/errors"
	"github.com/yanqian/projecthub/pkg/metrics"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc    auth.Service
	timelogSvc timelog.Service
	metrics    *metrics.Auth
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, timelogSvc timelog.Service, m *metrics.Auth, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		timelogSvc: timelogSvc,
		metrics:    m,
		logger:     logger.With("component", "http.handler"),
	}
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

type sessionUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register creates an account and returns a token for it.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveAttempt("register", metrics.OutcomeRejected)
		abortWithError(c, invalidRequest(err))
		return
	}
	resp, err := h.authSvc.Register(c.Request.Context(), req)
	h.observe("register", err)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for a token.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveAttempt("login", metrics.OutcomeRejected)
		abortWithError(c, invalidRequest(err))
		return
	}
	resp, err := h.authSvc.Login(c.Request.Context(), req)
	h.observe("login", err)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Profile returns the caller's account.
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, fromDomainError(auth.ErrMissingToken()))
		return
	}
	profile, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// Refresh issues a new token for the caller.
func (h *Handler) Refresh(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, fromDomainError(auth.ErrMissingToken()))
		return
	}
	resp, err := h.authSvc.RefreshToken(c.Request.Context(), claims.UserID)
	h.observe("refresh", err)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout acknowledges the request. Tokens are stateless, so the client discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := getClaims(c); ok {
		h.logger.Info("user logged out", "user_id", claims.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out, discard the token on the client"})
}

// Session reports whether the request carries a valid identity.
func (h *Handler) Session(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          &sessionUser{ID: claims.UserID, Email: claims.Email, Name: claims.Name},
	})
}

func (h *Handler) observe(op string, err error) {
	switch {
	case err == nil:
		h.metrics.ObserveAttempt(op, metrics.OutcomeSuccess)
	case statusForCode(apperrors.CodeOf(err)) < http.StatusInternalServerError:
		h.metrics.ObserveAttempt(op, metrics.OutcomeRejected)
	default:
		h.metrics.ObserveAttempt(op, metrics.OutcomeError)
	}
}
