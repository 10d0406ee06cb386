package server

import (
	"strings"
	"time"

	"echohole/internal/middleware"
	"echohole/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// VisitorCookie names the long-lived anonymous visitor identifier.
const VisitorCookie = "visitor_id"

const visitorCookieTTL = 365 * 24 * time.Hour

// shouldRecordVisit reports whether path is a page view rather than an API
// call or a static asset.
func shouldRecordVisit(method, path string) bool {
	if method != fiber.MethodGet {
		return false
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/health/") {
		return false
	}
	if path == "/metrics" {
		return false
	}
	last := path[strings.LastIndex(path, "/")+1:]
	return !strings.Contains(last, ".")
}

// RecordVisits stores one visit per page view and makes sure the browser
// carries a visitor cookie. Recording never fails the request.
func (s *Server) RecordVisits() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !shouldRecordVisit(c.Method(), c.Path()) {
			return c.Next()
		}

		visitorID := c.Cookies(VisitorCookie)
		if _, err := uuid.Parse(visitorID); err != nil {
			visitorID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     VisitorCookie,
				Value:    visitorID,
				Path:     "/",
				Expires:  time.Now().Add(visitorCookieTTL),
				HTTPOnly: true,
				Secure:   s.config.IsProduction(),
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		// Fiber strings alias request buffers that are reused once the
		// handler returns; the recorder writes after that.
		s.recorder.Record(c.UserContext(), models.Visit{
			VisitorID: utils.CopyString(visitorID),
			IPHash:    middleware.IdentityFrom(c),
			UserAgent: utils.CopyString(c.Get(fiber.HeaderUserAgent)),
			Referer:   utils.CopyString(c.Get(fiber.HeaderReferer)),
			PagePath:  utils.CopyString(c.Path()),
		})

		return c.Next()
	}
}
