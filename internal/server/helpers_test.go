package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

// --- humanizeParam (pure function, no HTTP) ---

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "id"},
		{"userId", "user id"},
		{"communityId", "community id"},
		{"slug", "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

// --- parsePagination ---

func TestParsePaginationDefaults(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, float64(25), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
}

func TestParsePaginationCapsAndClamps(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	req := httptest.NewRequest(http.MethodGet, "/items?limit=500&offset=-10", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, float64(100), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
}

// --- parseID ---

func TestParseIDValid(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseIDRejectsNonNumericAndZero(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		_, _ = s.parseID(c, "id")
		return nil
	})

	for _, raw := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/items/"+raw, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "id %q", raw)
		_ = resp.Body.Close()
	}
}

// --- isAdminByUserID / isBannedByUserID ---

func TestIsAdminByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_admin FROM "users" WHERE id = $1`)).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(true))

	admin, err := s.isAdminByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, admin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAdminByUserIDFalseForRegularUser(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_admin FROM "users" WHERE id = $1`)).
		WithArgs(uint(8)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(false))

	admin, err := s.isAdminByUserID(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestIsAdminByUserIDMissingUser(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_admin FROM "users" WHERE id = $1`)).
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{"is_admin"}))

	admin, err := s.isAdminByUserID(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, admin, "missing user must not be treated as admin")
}

func TestIsBannedByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	s := &Server{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_banned FROM "users" WHERE id = $1`)).
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_banned"}).AddRow(true))

	banned, err := s.isBannedByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, banned)
}
