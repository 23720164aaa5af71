package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/pkg/logging"
)

type capturingLogger struct {
	infoFields  []interface{}
	errorFields []interface{}
}

func (l *capturingLogger) Infow(msg string, keysAndValues ...interface{}) {
	l.infoFields = append(l.infoFields, keysAndValues...)
}

func (l *capturingLogger) Errorw(msg string, keysAndValues ...interface{}) {
	l.errorFields = append(l.errorFields, keysAndValues...)
}

func fieldValue(fields []interface{}, key string) interface{} {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] == key {
			return fields[i+1]
		}
	}
	return nil
}

func TestLoggerMiddleware_CarriesHubContextFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &capturingLogger{}

	router := gin.New()
	router.Use(LoggerMiddleware(log))
	router.GET("/api/v1/masterdata/:id", func(c *gin.Context) {
		ctx := logging.WithMasterdataID(c.Request.Context(), "md-123")
		ctx = logging.WithClientID(ctx, "client-9")
		c.Request = c.Request.WithContext(ctx)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/masterdata/md-123", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "md-123", fieldValue(log.infoFields, "masterdata_id"))
	assert.Equal(t, "client-9", fieldValue(log.infoFields, "client_id"))
	assert.Equal(t, http.StatusOK, fieldValue(log.infoFields, "status"))
}

func TestLoggerMiddleware_ServerErrorLogsAsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &capturingLogger{}

	router := gin.New()
	router.Use(LoggerMiddleware(log))
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Empty(t, log.infoFields)
	assert.Equal(t, http.StatusInternalServerError, fieldValue(log.errorFields, "status"))
}

func TestRequestIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, c.GetString(RequestIDKey))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	router.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
