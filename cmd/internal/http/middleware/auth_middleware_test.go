package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runAuth(token, header string) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/sync", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := NewAuthMiddleware(&AuthMiddlewareConfig{Token: token})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)
	return rec, called
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		pass   bool
	}{
		{"valid", "abc", "Bearer abc", true},
		{"missing header", "abc", "", false},
		{"wrong token", "abc", "Bearer abd", false},
		{"no scheme", "abc", "abc", false},
		{"lowercase scheme", "abc", "bearer abc", true},
		{"token prefix", "abc", "Bearer ab", false},
		{"unset token never matches", "", "Bearer ", false},
		{"unset token with value", "", "Bearer x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runAuth(tt.token, tt.header)
			assert.Equal(t, tt.pass, called)
			if !tt.pass {
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}
