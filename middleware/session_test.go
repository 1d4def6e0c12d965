package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/quickbasket/storefront/middleware"
)

func sessionRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CartSession())
	r.GET("/cart", func(c *gin.Context) {
		*captured = middleware.GetSessionID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestCartSession_AssignsCookieToNewVisitor(t *testing.T) {
	var sessionID string
	r := sessionRouter(&sessionID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.NotEmpty(t, sessionID)
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err, "session id must be opaque, not guessable")

	cookies := w.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSession_ReusesValidCookie(t *testing.T) {
	var sessionID string
	r := sessionRouter(&sessionID)

	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: existing})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, existing, sessionID)
	assert.Empty(t, w.Result().Cookies(), "a valid cookie must not be reissued")
}

func TestCartSession_ReplacesTamperedCookie(t *testing.T) {
	var sessionID string
	r := sessionRouter(&sessionID)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-uuid"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "not-a-uuid", sessionID)
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err)
	assert.Len(t, w.Result().Cookies(), 1)
}
