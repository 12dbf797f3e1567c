package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kungpiyaphon/note-app-api/internal/config"
	"github.com/kungpiyaphon/note-app-api/internal/models"
	"github.com/kungpiyaphon/note-app-api/internal/msgraph"
	"github.com/kungpiyaphon/note-app-api/internal/sessions"
	"github.com/kungpiyaphon/note-app-api/internal/tokens"
	"github.com/kungpiyaphon/note-app-api/internal/users"
	"github.com/kungpiyaphon/note-app-api/pkg/logger"
	"github.com/kungpiyaphon/note-app-api/pkg/middleware"
)

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type MicrosoftTokenRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	usersSvc  *users.Service
	graph     *msgraph.Client
	blacklist *sessions.Blacklist
}

func NewAuthHandler(cfg *config.Config, u *users.Service, g *msgraph.Client, bl *sessions.Blacklist) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, graph: g, blacklist: bl}
}

// Register routes under /auth. authn guards the routes that need a caller.
func (h *AuthHandler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterAccount)
	a.POST("/login", h.Login)
	a.POST("/cookie/login", h.CookieLogin)
	a.POST("/microsoft/signup", h.MicrosoftSignup)
	a.POST("/cookie/microsoft/signin", h.CookieMicrosoftSignin)
	a.POST("/logout", h.Logout)
	a.GET("/profile", authn, h.Profile)
}

// RegisterAccount creates a local password account.
func (h *AuthHandler) RegisterAccount(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "fullName, email and password are required", "details": err.Error()})
		return
	}
	if !h.cfg.DomainAllowed(req.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": true, "message": "Email domain is not allowed"})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": true, "message": "User already exists"})
			return
		}
		logger.Errorf("register: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"error": false, "fullName": u.FullName, "message": "Registration successful"})
}

// Login checks local credentials and returns the access token in the body.
func (h *AuthHandler) Login(c *gin.Context) {
	u, ok := h.authenticate(c)
	if !ok {
		return
	}
	token, err := tokens.GenerateAccessToken(h.cfg, u.ID.Hex())
	if err != nil {
		logger.Errorf("login: signing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "token": token, "message": "Login successful"})
}

// CookieLogin is the browser variant: the token travels in an HTTP-only
// cookie and the body carries the safe user fields.
func (h *AuthHandler) CookieLogin(c *gin.Context) {
	u, ok := h.authenticate(c)
	if !ok {
		return
	}
	token, err := tokens.GenerateAccessToken(h.cfg, u.ID.Hex())
	if err != nil {
		logger.Errorf("cookie login: signing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}
	h.setAccessCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"error": false, "user": u, "message": "Login successful"})
}

// authenticate binds the login body and resolves the account. Unknown email,
// wrong password and password-less (Microsoft) accounts all produce the same
// 401 so the response never reveals which part failed.
func (h *AuthHandler) authenticate(c *gin.Context) (*models.User, bool) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "email and password are required"})
		return nil, false
	}
	u, err := h.usersSvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid credentials"})
			return nil, false
		}
		logger.Errorf("login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return nil, false
	}
	return u, true
}

// MicrosoftSignup validates an Entra access token against Graph and signs the
// caller in, creating the account on first contact.
func (h *AuthHandler) MicrosoftSignup(c *gin.Context) {
	h.microsoftFlow(c, false)
}

// CookieMicrosoftSignin is the cookie variant of the Microsoft flow.
func (h *AuthHandler) CookieMicrosoftSignin(c *gin.Context) {
	h.microsoftFlow(c, true)
}

func (h *AuthHandler) microsoftFlow(c *gin.Context, useCookie bool) {
	var req MicrosoftTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "accessToken is required"})
		return
	}

	profile, err := h.graph.Me(c.Request.Context(), req.AccessToken)
	if err != nil {
		if errors.Is(err, msgraph.ErrUnauthorized) {
			c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "Invalid Microsoft access token"})
			return
		}
		logger.Errorf("microsoft sign-in: graph call: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Could not reach Microsoft Graph"})
		return
	}

	email := profile.Email()
	if !h.cfg.DomainAllowed(email) {
		c.JSON(http.StatusForbidden, gin.H{"error": true, "message": "Email domain is not allowed"})
		return
	}

	tenantID := tenantFromToken(req.AccessToken)
	u, created, err := h.usersSvc.FindOrCreateMicrosoft(c.Request.Context(), profile.ID, tenantID, email, profile.DisplayName)
	if err != nil {
		logger.Errorf("microsoft sign-in: upsert: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}

	token, err := tokens.GenerateAccessToken(h.cfg, u.ID.Hex())
	if err != nil {
		logger.Errorf("microsoft sign-in: signing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	body := gin.H{"error": false, "user": u, "message": "Login successful"}
	if useCookie {
		h.setAccessCookie(c, token)
	} else {
		body["token"] = token
	}
	c.JSON(status, body)
}

// Logout clears the cookie and, when Redis is available, blacklists the
// presented token for the rest of its lifetime. Always answers 200 so a
// client with an already-dead token can still finish logging out.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := ""
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	} else if v, err := c.Cookie(middleware.AccessCookieName); err == nil {
		raw = v
	}
	if raw != "" {
		if exp, err := expFromToken(raw); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := h.blacklist.Revoke(c.Request.Context(), raw, ttl); err != nil {
					logger.Warnf("logout: blacklist: %v", err)
				}
			}
		}
	}
	h.clearAccessCookie(c)
	c.JSON(http.StatusOK, gin.H{"error": false, "message": "Logged out"})
}

// Profile returns the authenticated account without its password hash.
func (h *AuthHandler) Profile(c *gin.Context) {
	u, err := h.usersSvc.GetByID(c.Request.Context(), c.GetString(middleware.ContextUserIDKey))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"error": false, "user": u})
}

func (h *AuthHandler) setAccessCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.JWT.AccessTokenTTL.Seconds())
	if h.cfg.IsProduction() {
		c.SetSameSite(http.SameSiteNoneMode)
		c.SetCookie(middleware.AccessCookieName, token, maxAge, "/", "", true, true)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessCookieName, token, maxAge, "/", "", false, true)
}

func (h *AuthHandler) clearAccessCookie(c *gin.Context) {
	c.SetCookie(middleware.AccessCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}

// jwtPayload decodes a JWT payload without verifying the signature. Good
// enough for reading exp/tid out of tokens we are about to discard or that
// Graph has already validated.
func jwtPayload(tok string) (map[string]interface{}, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return nil, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func expFromToken(tok string) (time.Time, error) {
	claims, err := jwtPayload(tok)
	if err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	return time.Unix(int64(v), 0), nil
}

// tenantFromToken pulls the Entra tenant id (tid) from the Microsoft access
// token when it is a decodable JWT; opaque tokens yield "".
func tenantFromToken(tok string) string {
	claims, err := jwtPayload(tok)
	if err != nil {
		return ""
	}
	tid, _ := claims["tid"].(string)
	return tid
}
