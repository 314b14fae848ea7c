package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskSensitiveString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		prefix   int
		suffix   int
		expected string
	}{
		{name: "empty", input: "", prefix: 3, suffix: 3, expected: ""},
		{name: "short", input: "abc", prefix: 3, suffix: 3, expected: "***"},
		{name: "api key", input: "0123456789abcdef", prefix: 4, suffix: 2, expected: "0123...ef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskSensitiveString(tt.input, tt.prefix, tt.suffix))
		})
	}
}

func TestMaskQueryValue(t *testing.T) {
	assert.Equal(t,
		"https://api.example.com/weather?appid=***&q=Oslo",
		MaskQueryValue("https://api.example.com/weather?appid=secret&q=Oslo", "appid"))
	assert.Equal(t,
		"https://api.example.com/weather?q=Oslo&appid=***",
		MaskQueryValue("https://api.example.com/weather?q=Oslo&appid=secret", "appid"))
	assert.Equal(t,
		"https://api.example.com/weather?q=Oslo",
		MaskQueryValue("https://api.example.com/weather?q=Oslo", "appid"))
}

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, "", getErrorType(nil))
	assert.Equal(t, "customErr", getErrorType(customErr{}))
	assert.Equal(t, "errorString", getErrorType(errors.New("x")))
}

func TestFilterSensitiveHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc")
	headers.Set("X-Api-Key", "k")
	headers.Set("Accept", "application/json")

	filtered := filterSensitiveHeaders(headers)
	assert.Equal(t, "[REDACTED]", filtered["Authorization"])
	assert.Equal(t, "[REDACTED]", filtered["X-Api-Key"])
	assert.Equal(t, "application/json", filtered["Accept"])
}

func TestHTTPErrorEntry_UsesExplicitStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
		wantTrace bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: zapcore.WarnLevel},
		{name: "validation", status: http.StatusBadRequest, wantLevel: zapcore.WarnLevel},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantLevel: zapcore.ErrorLevel, wantTrace: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/v1/screen/search", nil)
			c.Request.Header.Set("X-Api-Key", "k")
			c.Set("request_id", "req-1")
			require.Equal(t, http.StatusOK, c.Writer.Status())

			core, logs := observer.New(zapcore.DebugLevel)
			err := customErr{}
			writeHTTPError(zap.New(core), newHTTPErrorEntry(c, err, tt.status, "screen action failed"), err)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, "screen action failed", entry.Message)

			fields := entry.ContextMap()
			assert.Equal(t, int64(tt.status), fields["status_code"])
			assert.Equal(t, "customErr", fields["error_type"])
			assert.Equal(t, "req-1", fields["request_id"])
			assert.Equal(t, "/v1/screen/search", fields["path"])
			assert.Equal(t, "[REDACTED]", fields["headers"].(map[string]string)["X-Api-Key"])
			_, hasTrace := fields["stack_trace"]
			assert.Equal(t, tt.wantTrace, hasTrace)
		})
	}
}
