package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/metrics"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Password string `json:"password" binding:"required"`
	DOB      string `json:"dob" binding:"required,datetime=2006-01-02"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

var errInvalidCredentials = errors.New("invalid credentials")

func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
}

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body RegisterRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid registration payload")
			return
		}

		if err := app.Strength().ValidateStrength(c.Request.Context(), body.Password); err != nil {
			HandleDomainError(c, app.Logger(), err, "Password rejected")
			return
		}

		hash, err := app.Hasher().HashPassword(body.Password)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to process credentials")
			return
		}

		now := time.Now()
		user := &internal.User{
			ID:           uuid.NewString(),
			Username:     body.Username,
			PasswordHash: hash,
			DOB:          body.DOB,
			CreatedAt:    now,
		}
		age, err := user.AgeAt(now)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid date of birth")
			return
		}
		user.Age = age

		if err := app.Users().CreateUser(c.Request.Context(), user); err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to create account")
			return
		}

		token, err := app.Sessions().Issue(user.ID, user.Username)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to issue session")
			return
		}
		setSessionCookie(c, token, app.Sessions().TTL())

		metrics.RegistrationsTotal.Inc()
		app.Logger().Infof("registered user %s", user.Username)
		HandleSuccess(c, http.StatusCreated, user, nil)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := app.LoginLimiter().Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Limiter backends fail open; the attempt proceeds.
			app.Logger().Warnf("login limiter error for %s: %v", c.ClientIP(), err)
		}
		if !allowed {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
			HandleDomainError(c, app.Logger(),
				fmt.Errorf("%w: too many login attempts", internal.ErrRateLimited),
				"Too many login attempts, try again later")
			return
		}

		var body LoginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid login payload")
			return
		}

		user, err := app.Users().GetUserByUsername(c.Request.Context(), body.Username)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			// Same response as a wrong password: don't reveal which part failed.
			HandleError(c, app.Logger(), errInvalidCredentials, http.StatusBadRequest, "Invalid username or password")
			return
		}

		ok, err := app.Hasher().CheckPasswordHash(body.Password, user.PasswordHash)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to verify credentials")
			return
		}
		if !ok {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			HandleError(c, app.Logger(), errInvalidCredentials, http.StatusBadRequest, "Invalid username or password")
			return
		}

		// Keep the derived age consistent with dob on every login.
		if age, err := user.AgeAt(time.Now()); err == nil && age != user.Age {
			if err := app.Users().UpdateUserAge(c.Request.Context(), user.ID, age); err != nil {
				app.Logger().Warnf("failed to refresh age for %s: %v", user.Username, err)
			} else {
				user.Age = age
			}
		}

		token, err := app.Sessions().Issue(user.ID, user.Username)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Failed to issue session")
			return
		}
		setSessionCookie(c, token, app.Sessions().TTL())

		metrics.LoginsTotal.WithLabelValues("success").Inc()
		app.Logger().Infof("user %s logged in", user.Username)
		HandleSuccess(c, http.StatusOK, user, nil)
	}
}

// Logout clears the cookie client-side. The token itself stays valid until
// its natural expiry; there is no server-side revocation list.
func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearSessionCookie(c)
		HandleSuccess(c, http.StatusOK, nil, map[string]any{"logged_out": true})
	}
}

func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.SessionFromContext(c)
		user, err := app.Users().GetUserByID(c.Request.Context(), session.UserID)
		if err != nil {
			// A valid token for a vanished user is still unauthenticated.
			HandleError(c, app.Logger(), err, http.StatusUnauthorized, "Unknown session user")
			return
		}
		HandleSuccess(c, http.StatusOK, user, nil)
	}
}
