package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoggerTagsRequestIDAndTenant(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodGet, "/api/v1/claims")
	c.Set("request_id", "rid-1")
	c.Set("tenant_id", "acme")

	h := Logger(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"request_id":"rid-1"`, `"tenant":"acme"`, `"status":200`, `"level":"info"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodGet, "/api/v1/claims/nope")
	h := Logger(logger)(func(c echo.Context) error {
		return c.String(http.StatusNotFound, "missing")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("4xx should log at warn: %s", buf.String())
	}

	buf.Reset()
	c, _ = newTestContext(http.MethodGet, "/health")
	h = Logger(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("health probes should log at debug: %s", buf.String())
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodPost, "/api/v1/claims")
	c.Set("request_id", "rid-2")

	h := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})
	err := h(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected a 500 HTTPError, got %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, "panic recovered") || !strings.Contains(line, `"panic":"boom"`) {
		t.Errorf("panic not logged: %s", line)
	}
	if !strings.Contains(line, `"request_id":"rid-2"`) {
		t.Errorf("request id missing from panic log: %s", line)
	}
	if strings.Contains(he.Message.(string), "boom") {
		t.Error("panic value must not leak into the response")
	}
}

func TestRequestIDHonorsCallerHeader(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/doctors")
	c.Request().Header.Set(RequestIDHeader, "caller-id")

	h := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if got, _ := c.Get("request_id").(string); got != "caller-id" {
		t.Errorf("caller-supplied id not honored, got %q", got)
	}
	if rec.Header().Get(RequestIDHeader) != "caller-id" {
		t.Error("request id not echoed in the response header")
	}
}
