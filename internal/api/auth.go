package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"techstore/internal/service"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	userService   *service.UserService
	secureCookies bool
}

func NewAuthHandler(userService *service.UserService, secureCookies bool) *AuthHandler {
	return &AuthHandler{userService: userService, secureCookies: secureCookies}
}

// Register creates a customer account --> POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	input := service.RegisterInput{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.Register(c.Request().Context(), input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, user)
}

// Login verifies credentials, returns an access token and sets the httpOnly
// refresh cookie --> POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	login := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	tokens, user, err := h.userService.Login(c.Request().Context(), login.Email, login.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	h.setRefreshCookie(c, tokens.RefreshToken, tokens.RefreshTTL)
	return c.JSON(200, map[string]interface{}{
		"access_token": tokens.AccessToken,
		"user":         user,
	})
}

// Refresh rotates the refresh cookie and returns a new access token
// --> POST /api/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(401, map[string]string{"error": "missing refresh token"})
	}

	tokens, user, err := h.userService.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return errorJSON(c, err)
	}

	h.setRefreshCookie(c, tokens.RefreshToken, tokens.RefreshTTL)
	return c.JSON(200, map[string]interface{}{
		"access_token": tokens.AccessToken,
		"user":         user,
	})
}

// Logout drops the session --> POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.userService.Logout(c.Request().Context(), cookie.Value); err != nil {
			return errorJSON(c, err)
		}
	}
	h.setRefreshCookie(c, "", -time.Hour)
	return c.JSON(200, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user's profile --> GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetByID(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

// UpdateMe updates the authenticated user's profile --> PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	input := service.ProfileUpdate{}
	if err := c.Bind(&input); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), userID, input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, user)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/api/auth",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
