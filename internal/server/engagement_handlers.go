package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Description Like a post. Repeat likes are a quiet no-op.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{liked=bool}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	created, err := s.engagementService.LikePost(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"liked": true, "created": created})
}

// UnlikePost handles DELETE /api/posts/:id/like
// @Summary Remove a like
// @Description Remove a like. Removing an absent like is a quiet no-op.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{liked=bool}
// @Router /posts/{id}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	removed, err := s.engagementService.UnlikePost(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"liked": false, "removed": removed})
}

// BookmarkPost handles POST /api/posts/:id/bookmark
// @Summary Bookmark a post
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{bookmarked=bool}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/bookmark [post]
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	created, err := s.engagementService.BookmarkPost(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"bookmarked": true, "created": created})
}

// UnbookmarkPost handles DELETE /api/posts/:id/bookmark
// @Summary Remove a bookmark
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{bookmarked=bool}
// @Router /posts/{id}/bookmark [delete]
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	removed, err := s.engagementService.UnbookmarkPost(c.Context(), userID, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"bookmarked": false, "removed": removed})
}

// GetMyBookmarks handles GET /api/users/me/bookmarks
// @Summary List bookmarked posts
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} object{posts=[]models.Post}
// @Router /users/me/bookmarks [get]
func (s *Server) GetMyBookmarks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.engagementService.BookmarkedPosts(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// RecordPostView handles POST /api/posts/:id/view
// @Summary Record a post view
// @Description Record a view. Each viewer identity counts a post at most once:
// @Description signed-in users by account, anonymous viewers by session key
// @Description (X-Session-Key header) falling back to client IP.
// @Tags engagement
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{counted=bool}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/view [post]
func (s *Server) RecordPostView(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var userID *uint
	if id := currentUserID(c); id != 0 {
		userID = &id
	}

	sessionKey := c.Get("X-Session-Key")
	if sessionKey == "" {
		sessionKey = c.Cookies("session_key")
	}

	counted, err := s.engagementService.RecordView(c.Context(), postID, userID, sessionKey, c.IP())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"counted": counted})
}
