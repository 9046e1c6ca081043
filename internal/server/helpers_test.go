package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	cases := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"commentId", "comment ID"},
		{"parentCommentId", "parent comment ID"},
		{"number", "number"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, humanizeParam(tc.param), tc.param)
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/p", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		url  string
		want Pagination
	}{
		{"/p", Pagination{Limit: 20, Offset: 0}},
		{"/p?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"/p?limit=0", Pagination{Limit: 20, Offset: 0}},
		{"/p?limit=-3&offset=-1", Pagination{Limit: 20, Offset: 0}},
		{"/p?limit=500", Pagination{Limit: maxPaginationLimit, Offset: 0}},
		{"/p?limit=abc", Pagination{Limit: 20, Offset: 0}},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.url, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, tc.want, got, tc.url)
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	ok, err := app.Test(httptest.NewRequest("GET", "/items/42", nil), -1)
	require.NoError(t, err)
	_ = ok.Body.Close()
	assert.Equal(t, fiber.StatusOK, ok.StatusCode)

	for _, path := range []string{"/items/0", "/items/-1", "/items/abc"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestCurrentUserID(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		assert.Zero(t, currentUserID(c))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/authed", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		assert.Equal(t, uint(7), currentUserID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/anon", "/authed"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
