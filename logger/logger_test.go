package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/tradedesk/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(config.LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello", zap.String("k", "v"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestID(), GinMiddleware(zap.New(core)), Recovery(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	for path, want := range map[string]zapcore.Level{
		"/ok":      zapcore.InfoLevel,
		"/missing": zapcore.WarnLevel,
		"/panic":   zapcore.ErrorLevel,
	} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("X-Request-ID", "req-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

			logs := recorded.FilterMessage("HTTP Request").FilterField(zap.String("path", path)).All()
			require.Len(t, logs, 1)
			assert.Equal(t, want, logs[0].Level)
			assert.Equal(t, "req-1", logs[0].ContextMap()["request_id"])
		})
	}
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGorm_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGorm(zap.New(core), gormlogger.Warn)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, recorded.Len(), "fast queries are not logged at warn")

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, recorded.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("syntax"))
	assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 2, recorded.Len())

	l.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 1, recorded.FilterMessage("SQL Query").Len())
}
