package handlers

import (
	"errors"
	"net/http"

	"taskflow/internal/ai"
	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/gin-gonic/gin"
)

type textRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) aiReady(c *gin.Context) bool {
	if h.AI == nil || !h.AI.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled"})
		return false
	}
	return true
}

func aiError(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context()).Error("ai request failed", "error", err, "path", c.FullPath())
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled"})
	case errors.Is(err, ai.ErrEmptyInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "input text required"})
	case errors.Is(err, ai.ErrUnauthorized):
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI provider rejected credentials"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed"})
	}
}

func (h *Handler) AIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"available": h.AI != nil && h.AI.Available()})
}

func (h *Handler) AITitle(c *gin.Context) {
	if !h.aiReady(c) {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	title, err := h.AI.GenerateTitle(c.Request.Context(), req.Description)
	if err != nil {
		aiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title})
}

func (h *Handler) AIDescription(c *gin.Context) {
	if !h.aiReady(c) {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	desc, err := h.AI.GenerateDescription(c.Request.Context(), req.Title)
	if err != nil {
		aiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": desc})
}

// AISuggestions proposes new tasks from the user's current ones.
func (h *Handler) AISuggestions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !h.aiReady(c) {
		return
	}
	tasks, err := h.Board.ListTasks(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to load tasks", err)
		return
	}
	suggestions, err := h.AI.SuggestTasks(c.Request.Context(), tasks)
	if err != nil {
		aiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *Handler) AICategorize(c *gin.Context) {
	if !h.aiReady(c) {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	cols, err := h.Board.ListColumns(c.Request.Context())
	if err != nil {
		internalError(c, "failed to load columns", err)
		return
	}
	if len(cols) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "no columns configured"})
		return
	}
	column := h.AI.Categorize(c.Request.Context(), req.Title, req.Description, domain.ColumnIDs(cols))
	c.JSON(http.StatusOK, gin.H{"column": column})
}

// AICreateTask categorizes a task into a column and creates it there.
func (h *Handler) AICreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if !h.aiReady(c) {
		return
	}
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	task, err := h.Board.CreateTaskCategorized(c.Request.Context(), userID, req.Title, req.Description, h.AI)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}
