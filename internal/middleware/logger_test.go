package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(ZapLogger(zap.New(core)))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/ping", "/ping"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected api path at info, got %s", entries[0].Level)
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Fatalf("expected other path at debug, got %s", entries[1].Level)
	}
	if got := entries[0].ContextMap()["status"]; got != int64(http.StatusNoContent) {
		t.Fatalf("unexpected status field: %v", got)
	}
}
