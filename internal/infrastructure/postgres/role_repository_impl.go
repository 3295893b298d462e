package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	"github.com/oksasatya/fitness-app-api/internal/domain/repository"
)

type RoleRepository struct {
	pool dbtx
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM roles`).Scan(&n)
	return n, err
}

// Create inserts a role; an existing role with the same name is returned as is.
func (r *RoleRepository) Create(ctx context.Context, name entity.RoleName) (*entity.Role, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownRole, name)
	}
	role := &entity.Role{}
	var n string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = roles.updated_at
		RETURNING id, name, created_at, updated_at
	`, string(name)).Scan(&role.ID, &n, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	role.Name = entity.RoleName(n)
	return role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error) {
	role := &entity.Role{}
	var n string
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM roles WHERE name = $1
	`, string(name)).Scan(&role.ID, &n, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	role.Name = entity.RoleName(n)
	return role, nil
}

func (r *RoleRepository) Assign(ctx context.Context, userID string, name entity.RoleName) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %q", repository.ErrUnknownRole, name)
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1::uuid, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, string(name))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// either already assigned or the role is missing
		if _, err := r.GetByName(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
