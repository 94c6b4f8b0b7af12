package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/config"
	"github.com/agribridge/agribridge/middleware"
	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

const tokenTTL = 72 * time.Hour

// Loose shape check only: something@something.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type demoAccount struct {
	name         string
	email        string
	passwordHash string
	role         string
}

// AuthController handles the mock login, the join flow and session
// endpoints. Credentials come from the configured demo user list; the
// plaintext passwords are hashed once at construction.
type AuthController struct {
	sessions *stores.SessionStore
	regs     *stores.RegistrationStore
	accounts []demoAccount
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(sessions *stores.SessionStore, regs *stores.RegistrationStore) *AuthController {
	cfg := config.Get()
	accounts := make([]demoAccount, 0, len(cfg.DemoUsers))
	for _, u := range cfg.DemoUsers {
		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			utils.Sugar.Errorf("skipping demo user %s: %v", u.Email, err)
			continue
		}
		role := u.Type
		if !models.ValidRole(role) {
			role = models.RoleFarmer
		}
		accounts = append(accounts, demoAccount{
			name:         u.Name,
			email:        u.Email,
			passwordHash: hash,
			role:         role,
		})
	}
	return &AuthController{sessions: sessions, regs: regs, accounts: accounts}
}

// Captcha issues a fresh math challenge.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, question := utils.GenerateCaptcha()
	utils.Success(ctx, gin.H{"id": id, "question": question})
}

// Login authenticates against the demo user list and creates a session.
// With remember=true the session lands in the durable tier and survives
// restarts; otherwise it is ephemeral.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required"`
		Password      string `json:"password" binding:"required"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
		Remember      bool   `json:"remember"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "captcha verification failed")
		return
	}

	email := strings.TrimSpace(req.Email)
	var account *demoAccount
	for i := range a.accounts {
		if a.accounts[i].email == email {
			account = &a.accounts[i]
			break
		}
	}
	if account == nil || !utils.CheckPassword(account.passwordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	sess := models.SessionRecord{Name: account.name, Email: account.email, Type: account.role}
	if err := a.sessions.Persist(sess, req.Remember); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to persist session")
		return
	}

	token, err := utils.GenerateToken(sess, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"user":     sess,
		"redirect": middleware.DashboardPath(sess.Type),
	})
}

// Join registers a new farmer or expert and signs them in at once: one
// submit appends the registration and creates a session.
func (a *AuthController) Join(ctx *gin.Context) {
	var req struct {
		Role          string `json:"role"`
		Name          string `json:"name" binding:"required"`
		Email         string `json:"email" binding:"required"`
		Region        string `json:"region"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
		Remember      bool   `json:"remember"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "name and email required")
		return
	}

	if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "captcha verification failed")
		return
	}

	if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid email address")
		return
	}

	rec, err := a.regs.Append(models.RegistrationInput{
		Role:   req.Role,
		Name:   utils.Sanitize(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Region: utils.Sanitize(req.Region),
	})
	if err != nil {
		if errors.Is(err, stores.ErrValidation) {
			utils.Error(ctx, http.StatusBadRequest, 40012, "name and email required")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to save registration")
		return
	}
	utils.CacheInvalidate(registrationsCacheKey)

	sess := models.SessionRecord{Name: rec.Name, Email: rec.Email, Type: rec.Role}
	if err := a.sessions.Persist(sess, req.Remember); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to persist session")
		return
	}

	token, err := utils.GenerateToken(sess, tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"registration": rec,
		"token":        token,
		"user":         sess,
		"redirect":     middleware.DashboardPath(sess.Type),
	})
}

// Logout revokes the bearer token and destroys the session in both tiers.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := ctx.GetString(middleware.ContextTokenKey); token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	if err := a.sessions.Destroy(); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to destroy session")
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated identity.
func (a *AuthController) Me(ctx *gin.Context) {
	sess, ok := middleware.GetSession(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "not authenticated")
		return
	}
	utils.Success(ctx, gin.H{"user": sess})
}

// Session reports the store-held session record, useful for clients polling
// for cross-tab changes.
func (a *AuthController) Session(ctx *gin.Context) {
	rec, ok := a.sessions.Current()
	if !ok {
		utils.Success(ctx, gin.H{"session": nil})
		return
	}
	utils.Success(ctx, gin.H{"session": rec})
}
