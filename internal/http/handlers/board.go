package handlers

import (
	"net/http"
	"strconv"

	"taskflow/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListColumns(c *gin.Context) {
	cols, err := h.Board.ListColumns(c.Request.Context())
	if err != nil {
		internalError(c, "failed to load columns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

// GetBoard returns the grouped board with per-column counts.
func (h *Handler) GetBoard(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	board, err := h.Board.Board(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to load board", err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handler) RecentActivity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.Activity.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		internalError(c, "failed to load activity", err)
		return
	}
	if items == nil {
		items = []domain.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}
