package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/foodrush/internal/pkg/auth"
	testhelpers "github.com/polkiloo/foodrush/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		parser testhelpers.TokenParserStub
		token  string
		status int
		stored bool
	}{
		{name: "anonymous", status: http.StatusOK},
		{name: "invalid token", parser: testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}, token: "bad", status: http.StatusUnauthorized},
		{name: "internal", parser: testhelpers.TokenParserStub{Err: context.DeadlineExceeded}, token: "token", status: http.StatusInternalServerError},
		{name: "valid", parser: testhelpers.TokenParserStub{Principal: pkgAuth.Principal{Subject: "42", Role: pkgAuth.RoleRider}}, token: "token", status: http.StatusOK, stored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				principal pkgAuth.Principal
				found     bool
			)
			router := gin.New()
			router.Use(Authenticate(tt.parser))
			router.GET("/", func(c *gin.Context) {
				principal, found = Principal(c)
				c.Status(http.StatusOK)
			})

			resp := serve(router, tt.token)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if found != tt.stored {
				t.Fatalf("expected principal stored=%v, got %v", tt.stored, found)
			}
			if tt.stored && (principal.Subject != "42" || principal.Role != pkgAuth.RoleRider) {
				t.Fatalf("unexpected principal %+v", principal)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	parser := testhelpers.TokenParserStub{Principal: pkgAuth.Principal{Subject: "7", Role: pkgAuth.RoleCustomer}}
	router := gin.New()
	router.Use(Authenticate(parser), AuthRequired())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	if resp := serve(router, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp := serve(router, "token"); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.Code)
	}
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name   string
		role   pkgAuth.Role
		token  string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "restaurant", role: pkgAuth.RoleRestaurant, token: "token", status: http.StatusForbidden},
		{name: "admin", role: pkgAuth.RoleAdmin, token: "token", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Authenticate(testhelpers.TokenParserStub{Principal: pkgAuth.Principal{Subject: "1", Role: tt.role}}), AdminRequired())
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			if resp := serve(router, tt.token); resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ws", nil)
	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}

	c, _ = gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ws?token=query", nil)
	if token := extractToken(c); token != "query" {
		t.Fatalf("expected token from query, got %q", token)
	}

	c, _ = gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ws", nil)
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie"})
	if token := extractToken(c); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(0))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestDecompressRequestLimit(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write(bytes.Repeat([]byte("a"), 64))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest(16))
	var readErr error
	router.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if readErr == nil {
		t.Fatal("expected oversized body to fail")
	}
}

func TestRequestLogger(t *testing.T) {
	var levels []slog.Level
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			levels = append(levels, a.Value.Any().(slog.Level))
		}
		return a
	}})
	logger := slog.New(handler)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	if len(levels) != 2 || levels[0] != slog.LevelInfo || levels[1] != slog.LevelError {
		t.Fatalf("unexpected logged levels %v", levels)
	}
}
