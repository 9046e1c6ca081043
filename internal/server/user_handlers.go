package server

import (
	"gitforum/internal/models"
	"gitforum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetProfile(c.Context(), userID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Description Partial profile edit. Only the fields present in the request change.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{display_name=string,bio=string,avatar=string,location=string,website=string,github_username=string,twitter_username=string} true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} object{error=string}
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		DisplayName     *string `json:"display_name"`
		Bio             *string `json:"bio"`
		Avatar          *string `json:"avatar"`
		Location        *string `json:"location"`
		Website         *string `json:"website"`
		GithubUsername  *string `json:"github_username"`
		TwitterUsername *string `json:"twitter_username"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:          userID,
		DisplayName:     req.DisplayName,
		Bio:             req.Bio,
		Avatar:          req.Avatar,
		Location:        req.Location,
		Website:         req.Website,
		GithubUsername:  req.GithubUsername,
		TwitterUsername: req.TwitterUsername,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
// @Summary Delete own account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /users/me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.userService.DeleteAccount(c.Context(), userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} object{error=string}
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), userID, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if s.hub != nil {
		user.IsOnline = s.hub.IsOnline(user.ID)
	}

	// Signed-in viewers also learn whether they follow this user
	if viewerID := currentUserID(c); viewerID != 0 && viewerID != userID {
		following, followErr := s.followService.IsFollowing(c.Context(), viewerID, userID)
		if followErr == nil {
			return c.JSON(fiber.Map{"user": user, "is_following": following})
		}
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetUserByUsername handles GET /api/users/by-username/:username
// @Summary Get a user profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} object{error=string}
// @Router /users/by-username/{username} [get]
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	user, err := s.userService.GetByUsername(c.Context(), username, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if s.hub != nil {
		user.IsOnline = s.hub.IsOnline(user.ID)
	}

	return c.JSON(fiber.Map{"user": user})
}

// SearchUsers handles GET /api/users/search
// @Summary Search users
// @Tags users
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=[]models.User}
// @Failure 400 {object} object{error=string}
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	page := parsePagination(c, 20)

	users, err := s.userService.SearchUsers(c.Context(), query, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// GetTopContributors handles GET /api/users/top
// @Summary List the most prolific authors
// @Tags users
// @Produce json
// @Param limit query int false "Max results (default 10, cap 20)"
// @Success 200 {object} object{users=[]models.User}
// @Router /users/top [get]
func (s *Server) GetTopContributors(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	users, err := s.userService.TopContributors(c.Context(), limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}
