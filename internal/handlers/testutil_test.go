package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/notifications"
	"github.com/mirasocial/mira/backend/internal/repositories"
	"github.com/mirasocial/mira/backend/validators"
)

// newTestServer wires the full handler stack over an in-memory database.
// Authentication is replaced by a middleware that trusts the X-User-ID
// header; everything below it runs exactly as in production.
func newTestServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	// SQLite only enforces the cascading foreign keys with the pragma on
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	))

	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	api := e.Group("/api/v1")
	api.Use(testAuth)

	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	fanout := notifications.NewFanout(notificationRepo)

	NewUserHandler(userRepo).RegisterProfileRoutes(api)
	NewFollowHandler(followRepo, userRepo, fanout).RegisterFollowRoutes(api)
	NewPostHandler(postRepo, userRepo, commentRepo, likeRepo).RegisterPostRoutes(api)
	NewFeedHandler(postRepo, userRepo, followRepo, likeRepo).RegisterFeedRoutes(api)
	NewCommentHandler(commentRepo, postRepo, userRepo, fanout).RegisterCommentRoutes(api)
	NewLikeHandler(likeRepo, postRepo, userRepo, fanout).RegisterLikeRoutes(api)
	NewNotificationHandler(notificationRepo, userRepo).RegisterNotificationRoutes(api)

	return e, db
}

func testAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("X-User-ID")
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
		}
		id, err := strconv.ParseUint(header, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		c.Set("userID", uint(id))
		return next(c)
	}
}

// doRequest performs an authenticated JSON request against the test server
func doRequest(t *testing.T, e *echo.Echo, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatUint(uint64(userID), 10))
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, title string, published bool, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID:    authorID,
		Title:       title,
		Content:     "content of " + title,
		IsPublished: published,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// dataField digs into the response envelope's data object
func dataField(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}
