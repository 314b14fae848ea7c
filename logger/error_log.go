package logger

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPErrorEntry is one failed API request as it is written to the log.
type HTTPErrorEntry struct {
	Message    string
	ErrorType  string
	StatusCode int
	RequestID  string
	Method     string
	Path       string
	ClientIP   string
	Headers    map[string]string
	StackTrace string
}

// LogHTTPError logs err for the request in c. statusCode is the status the
// error handler is about to send; the response has not been written yet, so
// the writer's own status is not used.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	writeHTTPError(GetLogger().Desugar(), newHTTPErrorEntry(c, err, statusCode, message), err)
}

func newHTTPErrorEntry(c *gin.Context, err error, statusCode int, message string) HTTPErrorEntry {
	entry := HTTPErrorEntry{
		Message:    message,
		ErrorType:  getErrorType(err),
		StatusCode: statusCode,
		RequestID:  c.GetString("request_id"),
	}
	if c.Request != nil {
		entry.ClientIP = c.ClientIP()
		entry.Method = c.Request.Method
		entry.Path = c.Request.URL.Path
		entry.Headers = filterSensitiveHeaders(c.Request.Header)
	}
	// Only server errors carry a trace.
	if statusCode >= http.StatusInternalServerError && os.Getenv("ENVIRONMENT") != "production" {
		entry.StackTrace = getStackTrace(4)
	}
	return entry
}

func writeHTTPError(log *zap.Logger, entry HTTPErrorEntry, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("error_type", entry.ErrorType),
		zap.Int("status_code", entry.StatusCode),
		zap.String("method", entry.Method),
		zap.String("path", entry.Path),
		zap.String("client_ip", entry.ClientIP),
		zap.Any("headers", entry.Headers),
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("request_id", entry.RequestID))
	}
	if entry.StackTrace != "" {
		fields = append(fields, zap.String("stack_trace", entry.StackTrace))
	}

	if entry.StatusCode >= http.StatusInternalServerError {
		log.Error(entry.Message, fields...)
		return
	}
	log.Warn(entry.Message, fields...)
}

// getErrorType returns the dynamic type name of err without its package path.
func getErrorType(err error) string {
	if err == nil {
		return ""
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}

func getStackTrace(skip int) string {
	var pcs [32]uintptr
	frames := runtime.CallersFrames(pcs[:runtime.Callers(skip, pcs[:])])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			b.WriteString(frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n")
		}
		if !more {
			return b.String()
		}
	}
}

// filterSensitiveHeaders keeps the first value of each header and redacts
// anything that looks like a credential.
func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		lower := strings.ToLower(name)
		switch {
		case lower == "authorization", lower == "cookie",
			strings.Contains(lower, "token"), strings.Contains(lower, "key"), strings.Contains(lower, "secret"):
			filtered[name] = "[REDACTED]"
		case len(values) > 0:
			filtered[name] = values[0]
		}
	}
	return filtered
}
