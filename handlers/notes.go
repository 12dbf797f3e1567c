package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kungpiyaphon/note-app-api/internal/notes"
	"github.com/kungpiyaphon/note-app-api/internal/users"
	"github.com/kungpiyaphon/note-app-api/pkg/logger"
	"github.com/kungpiyaphon/note-app-api/pkg/middleware"
)

type AddNoteRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
}

type EditNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
}

type PinnedRequest struct {
	IsPinned *bool `json:"isPinned" binding:"required"`
}

type VisibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

// NotesHandler serves the note CRUD, search and sharing routes.
type NotesHandler struct {
	notesSvc *notes.Service
	usersSvc *users.Service
}

func NewNotesHandler(n *notes.Service, u *users.Service) *NotesHandler {
	return &NotesHandler{notesSvc: n, usersSvc: u}
}

// Register wires the note routes. authn guards everything except the two
// public sharing endpoints.
func (h *NotesHandler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	rg.POST("/add-note", authn, h.AddNote)
	rg.GET("/get-all-notes", authn, h.GetAllNotes)
	rg.GET("/get-note/:noteId", authn, h.GetNote)
	rg.POST("/edit-note/:noteId", authn, h.EditNote)
	rg.POST("/update-note-pinned/:noteId", authn, h.UpdatePinned)
	rg.POST("/delete-note/:noteId", authn, h.DeleteNote)
	rg.GET("/search-notes", authn, h.SearchNotes)

	rg.GET("/notes", authn, h.ListRecent)
	rg.POST("/notes", authn, h.CreateNote)
	rg.PUT("/notes/:noteId/visibility", authn, h.UpdateVisibility)

	rg.GET("/public-profile/:userId", h.PublicProfile)
	rg.GET("/public-notes/:userId", h.PublicNotes)
}

func callerID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// AddNote creates a note owned by the caller.
func (h *NotesHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "title and content are required"})
		return
	}
	n, err := h.notesSvc.Create(c.Request.Context(), callerID(c), req.Title, req.Content, req.Tags, req.IsPinned)
	if err != nil {
		logger.Errorf("add note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": n, "message": "Note added successfully"})
}

// CreateNote is the REST-shaped alias; any client-supplied owner is ignored.
func (h *NotesHandler) CreateNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "title and content are required"})
		return
	}
	n, err := h.notesSvc.Create(c.Request.Context(), callerID(c), req.Title, req.Content, req.Tags, req.IsPinned)
	if err != nil {
		logger.Errorf("create note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GetAllNotes lists the caller's notes, pinned ones first.
func (h *NotesHandler) GetAllNotes(c *gin.Context) {
	list, err := h.notesSvc.ListMine(c.Request.Context(), callerID(c))
	if err != nil {
		logger.Errorf("list notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "notes": list, "message": "All notes retrieved successfully"})
}

// ListRecent lists the caller's notes newest-first.
func (h *NotesHandler) ListRecent(c *gin.Context) {
	list, err := h.notesSvc.ListRecent(c.Request.Context(), callerID(c))
	if err != nil {
		logger.Errorf("list notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": list})
}

func (h *NotesHandler) GetNote(c *gin.Context) {
	n, err := h.notesSvc.Get(c.Request.Context(), callerID(c), c.Param("noteId"))
	if err != nil {
		h.noteError(c, err, "get note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": n})
}

// EditNote applies a partial update; at least one field must be supplied.
func (h *NotesHandler) EditNote(c *gin.Context) {
	var req EditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid request body"})
		return
	}
	patch := notes.EditPatch{Title: req.Title, Content: req.Content, Tags: req.Tags, IsPinned: req.IsPinned}
	n, err := h.notesSvc.Edit(c.Request.Context(), callerID(c), c.Param("noteId"), patch)
	if err != nil {
		if errors.Is(err, notes.ErrNoFields) {
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "No changes provided"})
			return
		}
		h.noteError(c, err, "edit note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": n, "message": "Note updated successfully"})
}

func (h *NotesHandler) UpdatePinned(c *gin.Context) {
	var req PinnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "isPinned is required"})
		return
	}
	n, err := h.notesSvc.SetPinned(c.Request.Context(), callerID(c), c.Param("noteId"), *req.IsPinned)
	if err != nil {
		h.noteError(c, err, "update pinned")
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": n, "message": "Note updated successfully"})
}

func (h *NotesHandler) UpdateVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "isPublic is required"})
		return
	}
	n, err := h.notesSvc.SetVisibility(c.Request.Context(), callerID(c), c.Param("noteId"), *req.IsPublic)
	if err != nil {
		h.noteError(c, err, "update visibility")
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "note": n, "message": "Note visibility updated successfully"})
}

func (h *NotesHandler) DeleteNote(c *gin.Context) {
	if err := h.notesSvc.Delete(c.Request.Context(), callerID(c), c.Param("noteId")); err != nil {
		h.noteError(c, err, "delete note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Note deleted successfully"})
}

// SearchNotes matches the query against the caller's note titles and content.
func (h *NotesHandler) SearchNotes(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Search query is required"})
		return
	}
	list, err := h.notesSvc.Search(c.Request.Context(), callerID(c), query)
	if err != nil {
		logger.Errorf("search notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "notes": list, "message": "Notes matching the search query retrieved successfully"})
}

// PublicProfile exposes the shareable fields of any account.
func (h *NotesHandler) PublicProfile(c *gin.Context) {
	p, err := h.usersSvc.PublicProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid user id"})
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		default:
			logger.Errorf("public profile: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "user": p})
}

// PublicNotes lists a user's published notes, newest first.
func (h *NotesHandler) PublicNotes(c *gin.Context) {
	list, err := h.notesSvc.PublicNotes(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, notes.ErrInvalidID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid user id"})
			return
		}
		logger.Errorf("public notes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "notes": list})
}

func (h *NotesHandler) noteError(c *gin.Context, err error, op string) {
	if errors.Is(err, notes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "Note not found"})
		return
	}
	logger.Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
}
