package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorhub/go-services/internal/config"
	"github.com/mentorhub/go-services/internal/tokens"
	"github.com/mentorhub/go-services/pkg/logger"
)

// DevLoginRequest asks for a locally signed access token. Only wired
// up outside production; e2e suites use it to authenticate without a
// Keycloak instance.
type DevLoginRequest struct {
	Subject string   `json:"subject" binding:"required"`
	Roles   []string `json:"roles"`
}

// RegisterDevLogin registers POST /dev-login issuing HS256 bearer
// tokens signed with the configured JWT secret.
func RegisterDevLogin(r *gin.Engine, cfg *config.Config) {
	r.POST("/dev-login", func(c *gin.Context) {
		var req DevLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		access, err := tokens.GenerateAccessToken(cfg.JWT.Secret, req.Subject, req.Roles, cfg.JWT.AccessTokenTTL)
		if err != nil {
			logger.Errorf("dev-login token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": access,
			"token_type":   "Bearer",
			"expires_in":   int(cfg.JWT.AccessTokenTTL.Seconds()),
		})
	})
	logger.Warn("dev-login endpoint enabled; do not use in production")
}
