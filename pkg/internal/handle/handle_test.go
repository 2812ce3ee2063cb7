package handle

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/ingestvault/pkg/internal/service"
)

// TestRespondServiceError 业务错误到 HTTP 状态码的映射.
func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"wrapped forbidden", fmt.Errorf("create: %w", service.ErrForbidden), http.StatusForbidden},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"validation", &service.ValidationError{Field: "source_id", Reason: "source 42 does not exist"}, http.StatusUnprocessableEntity},
		{"dependency", &service.DependencyError{Dependency: "object store", Err: errors.New("down")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, zerolog.Nop(), tc.err)

			if w.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, w.Code)
			}
		})
	}
}

// TestParseProcessID 非法 id 直接 400.
func TestParseProcessID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, raw := range []string{"", "abc", "-1", "0"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		if _, ok := parseProcessID(c); ok {
			t.Errorf("id %q should be rejected", raw)
		}

		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected 400, got %d", raw, w.Code)
		}
	}
}
