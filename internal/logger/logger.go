package logger

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const correlationHeader = "X-Correlation-ID"

// Logger is a leveled wrapper over the standard library logger.
type Logger struct {
	std   *log.Logger
	debug bool
}

// Init creates the process logger. LOG_LEVEL=debug enables debug output.
func Init() (*Logger, error) {
	level := strings.ToLower(os.Getenv("LOG_LEVEL"))
	return &Logger{
		std:   log.New(os.Stdout, "", log.LstdFlags),
		debug: level == "debug",
	}, nil
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.std.Printf("INFO "+format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.std.Printf("ERROR "+format, args...)
}

// Debugf logs at debug level when enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.std.Printf("DEBUG "+format, args...)
	}
}

// Fatalf logs and exits.
func (l *Logger) Fatalf(format string, args ...any) {
	l.std.Fatalf("FATAL "+format, args...)
}

// Middleware assigns a correlation id to each request, echoes it in the
// response header, and logs the request line with status and latency.
func Middleware() gin.HandlerFunc {
	std := log.New(os.Stdout, "", log.LstdFlags)
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Writer.Header().Set(correlationHeader, correlationID)

		start := time.Now()
		c.Next()

		std.Printf("INFO %s %s status=%d latency=%s correlation_id=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			correlationID,
		)
	}
}
