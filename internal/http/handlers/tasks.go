package handlers

import (
	"net/http"

	"taskflow/internal/domain"

	"github.com/gin-gonic/gin"
)

// taskRequest accepts columnId as an alias for status.
type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	ColumnID    string `json:"columnId"`
}

func (r taskRequest) status() string {
	if r.Status != "" {
		return r.Status
	}
	return r.ColumnID
}

type patchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	ColumnID    *string `json:"columnId"`
}

func (r patchRequest) patch() domain.TaskPatch {
	status := r.Status
	if status == nil {
		status = r.ColumnID
	}
	return domain.TaskPatch{Title: r.Title, Description: r.Description, Status: status}
}

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	tasks, err := h.Board.ListTasks(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to load tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	task, err := h.Board.CreateTask(c.Request.Context(), userID, req.Title, req.Description, req.status())
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	patch := req.patch()
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	task, err := h.Board.UpdateTask(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type moveRequest struct {
	Status   string `json:"status"`
	ColumnID string `json:"columnId"`
}

// MoveTask is the drag-and-drop endpoint. "moved" is false when the task was
// already in the target column.
func (h *Handler) MoveTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	status := req.Status
	if status == "" {
		status = req.ColumnID
	}
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}

	task, moved, err := h.Board.MoveTask(c.Request.Context(), userID, c.Param("id"), status)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "moved": moved})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.Board.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		taskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
