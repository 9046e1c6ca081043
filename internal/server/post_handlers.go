package server

import (
	"gitforum/internal/models"
	"gitforum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Create a new code snippet post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,filename=string,language=string,code=string,description=string,is_public=bool,tags=[]string} true "Post content"
// @Success 201 {object} models.Post
// @Failure 400 {object} object{error=string}
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string   `json:"title"`
		Filename    string   `json:"filename"`
		Language    string   `json:"language"`
		Code        string   `json:"code"`
		Description string   `json:"description"`
		IsPublic    *bool    `json:"is_public"`
		Tags        []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:    userID,
		Title:       req.Title,
		Filename:    req.Filename,
		Language:    req.Language,
		Code:        req.Code,
		Description: req.Description,
		IsPublic:    isPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description List public posts with optional language/tag filters and sort order
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 50)"
// @Param offset query int false "Offset"
// @Param sort query string false "Sort order: new or top"
// @Param language query string false "Filter by language"
// @Param tag query string false "Filter by tag"
// @Success 200 {object} object{posts=[]models.Post}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:    page.Limit,
		Offset:   page.Offset,
		Sort:     c.Query("sort", "new"),
		Language: c.Query("language"),
		Tag:      c.Query("tag"),
	}, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetTrendingPosts handles GET /api/posts/trending
// @Summary Trending posts
// @Description List posts ranked by recent engagement over a period
// @Tags posts
// @Produce json
// @Param period query string false "Trending window: day, week or month (default day)"
// @Param limit query int false "Page size"
// @Success 200 {object} object{posts=[]models.Post,period=string}
// @Failure 400 {object} object{error=string}
// @Router /posts/trending [get]
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	period := c.Query("period", "day")
	page := parsePagination(c, 20)
	userID := currentUserID(c)

	// The trending widget ships enabled; the flag is its kill switch.
	if !s.featureFlags.EnabledOrDefault("trending", userID, true) {
		return c.JSON(fiber.Map{
			"posts":  []*models.Post{},
			"period": period,
		})
	}

	posts, err := s.postService.TrendingPosts(c.Context(), period, page.Limit, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"period": period,
	})
}

// SearchPosts handles GET /api/posts/search
// @Summary Search posts
// @Description Full-text search over post titles, descriptions and code
// @Tags posts
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} object{posts=[]models.Post,query=string}
// @Failure 400 {object} object{error=string}
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query := c.Query("q")
	page := parsePagination(c, 20)

	posts, err := s.postService.SearchPosts(c.Context(), query, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"query": query,
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Fetch a single post. Private posts are only visible to their author.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} object{error=string}
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary List a user's posts
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{posts=[]models.Post}
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.UserPosts(c.Context(), userID, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Edit a post's content. Content changes snapshot the previous
// @Description version into the revision history before the edit lands.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{title=string,code=string,description=string,is_public=bool,tags=[]string,commit_message=string} true "Fields to update"
// @Success 200 {object} models.Post
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title         *string  `json:"title"`
		Code          *string  `json:"code"`
		Description   *string  `json:"description"`
		IsPublic      *bool    `json:"is_public"`
		Tags          []string `json:"tags"`
		CommitMessage string   `json:"commit_message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		PostID:        postID,
		EditorID:      userID,
		Title:         req.Title,
		Code:          req.Code,
		Description:   req.Description,
		IsPublic:      req.IsPublic,
		Tags:          req.Tags,
		CommitMessage: req.CommitMessage,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetPostRevisions handles GET /api/posts/:id/revisions
// @Summary List post revisions
// @Description List the edit history of a post, newest first
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{revisions=[]models.PostRevision}
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/revisions [get]
func (s *Server) GetPostRevisions(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	revisions, err := s.postService.ListRevisions(c.Context(), postID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"revisions": revisions})
}

// GetPostRevision handles GET /api/posts/:id/revisions/:number
// @Summary Get a post revision
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param number path int true "Revision number (1-based)"
// @Success 200 {object} models.PostRevision
// @Failure 404 {object} object{error=string}
// @Router /posts/{id}/revisions/{number} [get]
func (s *Server) GetPostRevision(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	number, err := s.parseID(c, "number")
	if err != nil {
		return nil
	}

	revision, err := s.postService.GetRevision(c.Context(), postID, int(number), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(revision)
}
