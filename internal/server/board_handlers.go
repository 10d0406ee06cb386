package server

import (
	"echohole/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// SubmitRequest is the body of POST /api/submit.
type SubmitRequest struct {
	Content string `json:"content"`
}

// LikeRequest is the body of POST /api/like.
type LikeRequest struct {
	PostID uint `json:"post_id" validate:"required"`
}

// ReportRequest is the body of POST /api/report.
type ReportRequest struct {
	PostID uint   `json:"post_id" validate:"required"`
	Reason string `json:"reason"`
}

// Submit handles POST /api/submit
// @Summary Submit a post
// @Description Create an anonymous post. Content is trimmed, length-checked and masked.
// @Tags board
// @Accept json
// @Produce json
// @Param request body object{content=string} true "Post content"
// @Success 201 {object} object{ok=bool,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /submit [post]
func (s *Server) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.boardService.Submit(c.UserContext(), middleware.IdentityFrom(c), req.Content)
	if err != nil {
		return respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "post": post})
}

// ListPosts handles GET /api/list
// @Summary List posts
// @Description Newest-first page of visible posts
// @Tags board
// @Produce json
// @Param status query string false "published or approved; both when omitted"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size (1-50)" default(20)
// @Success 200 {object} service.PostPage
// @Failure 400 {object} models.ErrorResponse
// @Router /list [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page, size := pageParams(c)
	result, err := s.boardService.List(c.UserContext(), c.Query("status"), page, size)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// Like handles POST /api/like
// @Summary Like a post
// @Tags board
// @Accept json
// @Produce json
// @Param request body object{post_id=int} true "Post to like"
// @Success 200 {object} object{ok=bool,likes=int}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /like [post]
func (s *Server) Like(c *fiber.Ctx) error {
	var req LikeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	likes, err := s.boardService.Like(c.UserContext(), middleware.IdentityFrom(c), req.PostID)
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "likes": likes})
}

// Report handles POST /api/report
// @Summary Report a post
// @Description Record a report. Published posts move to the reported state.
// @Tags board
// @Accept json
// @Produce json
// @Param request body object{post_id=int,reason=string} true "Post to report"
// @Success 200 {object} object{ok=bool,status=string,reports=int}
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /report [post]
func (s *Server) Report(c *fiber.Ctx) error {
	var req ReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.boardService.Report(c.UserContext(), middleware.IdentityFrom(c), req.PostID, req.Reason)
	if err != nil {
		return respond(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "status": result.Status, "reports": result.Reports})
}
