package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/http/middleware"
	"taskflow/internal/logger"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
)

type boardService interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	ListColumns(ctx context.Context) ([]domain.Column, error)
	Board(ctx context.Context, userID string) (domain.Board, error)
	CreateTask(ctx context.Context, userID, title, description, status string) (*domain.Task, error)
	CreateTaskCategorized(ctx context.Context, userID, title, description string, c service.Categorizer) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	MoveTask(ctx context.Context, userID, id, status string) (*domain.Task, bool, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

type authService interface {
	SignUp(ctx context.Context, email, password, confirm string) (*domain.User, string, error)
	SignIn(ctx context.Context, email, password string) (*service.Session, error)
	SignOut(ctx context.Context, token string) error
	ExchangeCode(ctx context.Context, code string) (*service.Session, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirm string) error
	User(ctx context.Context, id string) (*domain.User, error)
}

type activityFeed interface {
	Recent(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

type assistant interface {
	service.Categorizer
	Available() bool
	GenerateTitle(ctx context.Context, description string) (string, error)
	GenerateDescription(ctx context.Context, title string) (string, error)
	SuggestTasks(ctx context.Context, tasks []domain.Task) ([]string, error)
}

type Handler struct {
	Board    boardService
	Auth     authService
	Activity activityFeed
	AI       assistant

	CookieSecure bool
	// JWTReady reports whether sessions can be issued; the auth callback
	// redirects with error=config when it returns false.
	JWTReady func() bool
}

func NewHandler(board boardService, auth authService, activity activityFeed, ai assistant, cookieSecure bool) *Handler {
	return &Handler{
		Board:        board,
		Auth:         auth,
		Activity:     activity,
		AI:           ai,
		CookieSecure: cookieSecure,
		JWTReady:     service.JWTConfigured,
	}
}

// getUserID returns the user id set by the JWT middleware.
func getUserID(c *gin.Context) (string, bool) {
	id := middleware.UserID(c)
	return id, id != ""
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.CookieSecure, true)
}

// internalError logs err with the request logger and answers with a static message.
func internalError(c *gin.Context, msg string, err error) {
	logger.WithContext(c.Request.Context()).Error(msg, "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func taskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
	case errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrDescriptionTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		internalError(c, "task operation failed", err)
	}
}
