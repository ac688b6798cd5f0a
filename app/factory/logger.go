package factory

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NewModuleLogger returns the standard logger tagged with the module name.
func NewModuleLogger(module string) logrus.FieldLogger {
	return logrus.WithField("module", module)
}

// LoggerWithContext enriches logger with the request id and route of an echo request.
func LoggerWithContext(logger logrus.FieldLogger, ctx echo.Context) logrus.FieldLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if ctx == nil {
		return logger
	}

	fields := logrus.Fields{
		"method": ctx.Request().Method,
		"path":   ctx.Path(),
	}
	if requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)); requestID != "" {
		fields["request_id"] = requestID
	}
	return logger.WithFields(fields)
}

// ConfigureLogging applies the JSON formatter and the configured level to the standard logger.
func ConfigureLogging(level string) error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return err
	}
	logrus.SetLevel(parsed)
	return nil
}
