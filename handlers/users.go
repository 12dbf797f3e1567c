package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kungpiyaphon/note-app-api/internal/users"
	"github.com/kungpiyaphon/note-app-api/pkg/logger"
)

type CreateUserRequest struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UsersHandler serves the account administration routes.
type UsersHandler struct {
	usersSvc *users.Service
}

func NewUsersHandler(u *users.Service) *UsersHandler {
	return &UsersHandler{usersSvc: u}
}

func (h *UsersHandler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	rg.GET("/users", authn, h.List)
	rg.POST("/users", authn, h.Create)
}

// List returns every account; password hashes never serialize.
func (h *UsersHandler) List(c *gin.Context) {
	all, err := h.usersSvc.ListAll(c.Request.Context())
	if err != nil {
		logger.Errorf("list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "users": all})
}

// Create adds an account with an explicit username. Email and username
// collisions are reported separately.
func (h *UsersHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "username, email and password are required"})
		return
	}
	fullName := req.FullName
	if fullName == "" {
		fullName = req.Name
	}
	u, err := h.usersSvc.AdminCreate(c.Request.Context(), fullName, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": true, "message": "Email already in use"})
		case errors.Is(err, users.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": true, "message": "Username already in use"})
		default:
			logger.Errorf("create user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"error": false, "user": u})
}
