package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"catbox/internal/http/middleware"
	"catbox/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates an account.
//
// @Summary  Register a user
// @Tags     auth
// @Accept   json,x-www-form-urlencoded
// @Produce  json
// @Param    body body credentialsRequest true "credentials"
// @Success  201 {object} registerResponse
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		id, err := svc.Register(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(registerResponse{ID: id})
	}
}

// Login issues a session token, returned in the body and as an HttpOnly cookie.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json,x-www-form-urlencoded
// @Produce  json
// @Param    body body credentialsRequest true "credentials"
// @Success  200 {object} loginResponse
// @Failure  401 {object} errorPayload
// @Router   /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "malformed body")
		}
		sess, err := svc.Authenticate(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   c.Protocol() == "https",
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(loginResponse{Token: sess.Token, UserID: sess.UserID, ExpiresAt: sess.ExpiresAt})
	}
}

// Logout revokes the presented token and clears the cookie. Always 204.
//
// @Summary  Log out
// @Tags     auth
// @Success  204
// @Router   /auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.EndSession(c.UserContext(), middleware.SessionToken(c))
		c.ClearCookie(middleware.SessionCookieName)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
