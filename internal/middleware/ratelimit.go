package middleware

import (
	"errors"
	"log/slog"

	"echohole/internal/models"
	"echohole/internal/observability"
	"echohole/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the rate limit store is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if the store is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if the store is unavailable.
	FailClosed
)

// ErrLimiterUnavailable is reported under FailClosed when the store errors.
var ErrLimiterUnavailable = errors.New("rate limit unavailable")

// Allow consults limiter for action and applies policy to store failures.
// A nil error with Allowed=false means the caller is over budget.
func Allow(c *fiber.Ctx, limiter *ratelimit.Limiter, action, id string, policy FailPolicy) (ratelimit.Decision, error) {
	d, err := limiter.Check(c.UserContext(), action, id)
	if err != nil {
		observability.RateLimitDecisions.WithLabelValues(action, "error").Inc()
		if policy == FailClosed {
			Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
				slog.String("action", action), slog.String("error", err.Error()))
			return ratelimit.Decision{}, ErrLimiterUnavailable
		}
		Logger.WarnContext(c.UserContext(), "rate limit store error, allowing request",
			slog.String("action", action), slog.String("error", err.Error()))
		return ratelimit.Decision{Allowed: true}, nil
	}
	if d.Allowed {
		observability.RateLimitDecisions.WithLabelValues(action, "allowed").Inc()
	} else {
		observability.RateLimitDecisions.WithLabelValues(action, "denied").Inc()
	}
	return d, nil
}

// RateLimit returns a Fiber middleware enforcing limiter per caller identity
// for the named action. It defaults to FailOpen policy.
func RateLimit(limiter *ratelimit.Limiter, action string) fiber.Handler {
	return RateLimitWithPolicy(limiter, action, FailOpen)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(limiter *ratelimit.Limiter, action string, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)
		if id == "" {
			id = "ip:" + c.IP()
		}

		d, err := Allow(c, limiter, action, id, policy)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: err.Error(),
			})
		}
		if !d.Allowed {
			return models.RespondWithError(c, fiber.StatusTooManyRequests, models.NewRateLimitedError(d.RetryAfter))
		}
		return c.Next()
	}
}
