package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
)

// EnsureRoles seeds the fixed role set when the role table is empty.
func EnsureRoles(ctx context.Context, roles repo.RoleRepository, logger *logrus.Logger) error {
	n, err := roles.Count(ctx)
	if err != nil {
		return fmt.Errorf("count roles: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, name := range entity.AllRoles() {
		if _, err := roles.Create(ctx, name); err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
	}
	if logger != nil {
		logger.WithField("roles", entity.AllRoles()).Info("initialized roles")
	}
	return nil
}
