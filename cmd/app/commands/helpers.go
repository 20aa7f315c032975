// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/capgate/capgate/internal/app"
	"github.com/capgate/capgate/internal/authz/domain"
)

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// parseRequestContext parses a JSON object string into a request context.
// An empty string yields an empty context.
func parseRequestContext(contextJSON string) (domain.Context, error) {
	if contextJSON == "" {
		return domain.Context{}, nil
	}

	var reqCtx domain.Context
	if err := json.Unmarshal([]byte(contextJSON), &reqCtx); err != nil {
		return nil, fmt.Errorf("invalid context JSON: %w", err)
	}

	return reqCtx, nil
}
