package ldap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// logOperation runs fn with operation-scoped logging. The context is
// checked before the protocol call; go-ldap operations themselves are
// bounded by the connection timeout.
func (c *client) logOperation(ctx context.Context, operation string, fields []zap.Field, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields = append(fields, zap.String("operation", operation))

	c.logger.Debug("starting directory operation", fields...)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	fields = append(fields, zap.Duration("elapsed", elapsed))

	if err != nil {
		c.logger.Error("directory operation failed", append(fields, zap.Error(err))...)
		return err
	}

	c.logger.Debug("directory operation completed", fields...)
	return nil
}
