// File: /services/service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filmogram-api/models"
	"filmogram-api/repositories"
)

// requireExists fails with a NotFound domain error unless the directory holds id.
func requireExists(ctx context.Context, dir repositories.Directory, domain, op string, kind models.EntityKind, id int64) error {
	ok, err := dir.Exists(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", domain, op, err)
	}
	if !ok {
		return models.NotFound(domain, op, kind, id)
	}
	return nil
}

// translate maps store errors onto the domain taxonomy.
func translate(err error, domain, op string, kind models.EntityKind, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return models.NotFound(domain, op, kind, id)
	}
	var domainErr *models.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("%s.%s: %w", domain, op, err)
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
