package server

import (
	"context"
	"time"

	"echohole/internal/middleware"
	"echohole/internal/moderation"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie names the cookie carrying the admin session token.
const SessionCookie = "admin_session"

const adminLocal = "admin"

// LoginRequest is the body of POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// ModerateRequest is the body of POST /api/admin/moderate.
type ModerateRequest struct {
	PostID uint   `json:"post_id" validate:"required"`
	Action string `json:"action" validate:"required,oneof=approve reject delete"`
}

// IDRequest is the body of the approve, reject and delete shortcuts.
type IDRequest struct {
	ID uint `json:"id" validate:"required"`
}

// AdminRequired rejects requests without a live admin session.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := s.authService.Verify(c.UserContext(), c.Cookies(SessionCookie))
		if err != nil {
			return respond(c, err)
		}

		c.Locals(adminLocal, session.Username)
		ctx := context.WithValue(c.UserContext(), middleware.AdminKey, session.Username)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (s *Server) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// AdminLogin handles POST /api/admin/login
// @Summary Admin login
// @Description Verify admin credentials and set the session cookie
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Credentials"
// @Success 200 {object} object{ok=bool,expires_at=int}
// @Failure 401 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /admin/login [post]
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	session, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respond(c, err)
	}

	c.Cookie(s.sessionCookie(session.ID, time.Unix(session.ExpiresAt, 0)))
	return c.JSON(fiber.Map{"ok": true, "expires_at": session.ExpiresAt})
}

// AdminLogout handles POST /api/admin/logout
// @Summary Admin logout
// @Tags admin
// @Produce json
// @Success 200 {object} object{ok=bool}
// @Router /admin/logout [post]
func (s *Server) AdminLogout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), c.Cookies(SessionCookie)); err != nil {
		return respond(c, err)
	}
	c.Cookie(s.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"ok": true})
}

// AdminStatus handles GET /api/admin/status
// @Summary Admin session status
// @Tags admin
// @Produce json
// @Success 200 {object} object{logged_in=bool}
// @Router /admin/status [get]
func (s *Server) AdminStatus(c *fiber.Ctx) error {
	_, err := s.authService.Verify(c.UserContext(), c.Cookies(SessionCookie))
	return c.JSON(fiber.Map{"logged_in": err == nil})
}

// AdminListPosts handles GET /api/admin/posts
// @Summary List posts for review
// @Description Defaults to the review queue: pending with pre-approval, reported otherwise
// @Tags admin
// @Produce json
// @Param status query string false "Any stored status"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (1-100)" default(20)
// @Success 200 {object} service.PostPage
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/posts [get]
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	page, size := pageParams(c)
	result, err := s.moderationService.ListByStatus(c.UserContext(), c.Query("status"), page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// Moderate handles POST /api/admin/moderate
// @Summary Moderate a post
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{post_id=int,action=string} true "approve, reject or delete"
// @Success 200 {object} object{ok=bool,post_id=int,status=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/moderate [post]
func (s *Server) Moderate(c *fiber.Ctx) error {
	var req ModerateRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	return s.moderate(c, req.PostID, moderation.Action(req.Action))
}

// moderateAlias serves POST /api/admin/{approve,reject,delete} with body {id}.
func (s *Server) moderateAlias(action moderation.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req IDRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		return s.moderate(c, req.ID, action)
	}
}

func (s *Server) moderate(c *fiber.Ctx, postID uint, action moderation.Action) error {
	result, err := s.moderationService.Moderate(c.UserContext(), postID, action)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "post_id": result.PostID, "status": result.Status})
}

// GetAnalytics handles GET /api/admin/analytics
// @Summary Visit analytics
// @Tags admin
// @Produce json
// @Param windowHours query int false "Trailing window in hours (1-720)" default(24)
// @Success 200 {object} models.AnalyticsSummary
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/analytics [get]
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	hours := c.QueryInt("windowHours", 0)
	if hours == 0 {
		hours = c.QueryInt("timeRange", 0)
	}
	summary, err := s.analyticsService.GetAnalytics(c.UserContext(), hours)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(summary)
}

// GetRealtime handles GET /api/admin/realtime
// @Summary Newest visits, regardless of time window
// @Tags admin
// @Produce json
// @Param limit query int false "Maximum visits (1-100)" default(20)
// @Success 200 {object} object{visits=[]models.Visit}
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/realtime [get]
func (s *Server) GetRealtime(c *fiber.Ctx) error {
	visits, err := s.analyticsService.Realtime(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"visits": visits})
}

// GetStats handles GET /api/admin/stats
// @Summary Post counts per status and live connections
// @Tags admin
// @Produce json
// @Success 200 {object} object{counts=map[string]int,connections=int}
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/stats [get]
func (s *Server) GetStats(c *fiber.Ctx) error {
	counts, err := s.moderationService.StatusCounts(c.UserContext())
	if err != nil {
		return respond(c, err)
	}

	out := make(map[string]int64, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	return c.JSON(fiber.Map{"counts": out, "connections": s.hub.Count()})
}
