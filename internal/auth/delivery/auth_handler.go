package delivery

import (
	"log"
	"net/http"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	"jobtrail-backend/internal/auth/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles account and token HTTP requests
type AuthHandler struct {
	users  repository.UserRepository
	issuer *JWTVerifier
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repository.UserRepository, issuer *JWTVerifier) *AuthHandler {
	return &AuthHandler{
		users:  users,
		issuer: issuer,
	}
}

// TokensRequest carries Google OAuth tokens obtained by the client.
type TokensRequest struct {
	Email        string     `json:"email" binding:"required,email"`
	AccessToken  string     `json:"access_token" binding:"required"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// StoreTokens upserts the user by email and stores their Google tokens, so
// the background poller can sync their mailbox
// POST /api/auth/tokens
func (h *AuthHandler) StoreTokens(c *gin.Context) {
	var req TokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created := false
	if user == nil {
		user = &authdomain.User{
			ID:    uuid.New().String(),
			Email: req.Email,
		}
		created = true
	}

	user.GoogleAccessToken = req.AccessToken
	// A refresh token only arrives on first consent; keep the stored one
	// when the payload omits it.
	if req.RefreshToken != "" {
		user.GoogleRefreshToken = req.RefreshToken
	}
	user.TokenExpiresAt = req.ExpiresAt

	if created {
		err = h.users.Create(user)
	} else {
		err = h.users.Update(user)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sessionToken, err := h.issuer.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[AUTH] stored Google tokens for %s (new=%v)", user.Email, created)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"token": sessionToken,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Me returns the authenticated user's profile
// GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"syncable":       user.Syncable(),
		"last_synced_at": user.LastSyncedAt,
	})
}
