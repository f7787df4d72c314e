package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/projecthub/internal/domain/timelog"
)

// CreateEntry logs hours for the caller.
func (h *Handler) CreateEntry(c *gin.Context) {
	var in timelog.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	entry, err := h.timelogSvc.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListEntries returns the caller's entries.
func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.timelogSvc.ListMine(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ListUserEntries returns the entries of :userId, which must be the caller.
func (h *Handler) ListUserEntries(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	entries, err := h.timelogSvc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetEntry returns one of the caller's entries.
func (h *Handler) GetEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.timelogSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry replaces one of the caller's entries.
func (h *Handler) UpdateEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in timelog.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, invalidRequest(err))
		return
	}
	entry, err := h.timelogSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes one of the caller's entries.
func (h *Handler) DeleteEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.timelogSvc.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, codeInvalidRequest, name+" must be a positive integer", err))
		return 0, false
	}
	return id, true
}
