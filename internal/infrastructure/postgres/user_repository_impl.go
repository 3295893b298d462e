package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	"github.com/oksasatya/fitness-app-api/internal/domain/repository"
)

const usersEmailKey = "users_email_key"

// selectUser loads a user with its role names aggregated from user_roles.
const selectUser = `
	SELECT u.id, u.email, u.password_hash, u.name, u.avatar_url, u.created_at, u.updated_at,
	       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id
`

// dbtx is the part of *pgxpool.Pool the repositories use.
type dbtx interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ dbtx = (*pgxpool.Pool)(nil)

type UserRepository struct {
	pool dbtx
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, name, avatar_url)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, u.Email, u.Password, u.Name, u.AvatarURL)
		if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			if isUniqueViolation(err, usersEmailKey) {
				return repository.ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if len(u.Roles) == 0 {
			return nil
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1::uuid, id FROM roles WHERE name = ANY($2)
		`, u.ID, roleStrings(u.Roles))
		if err != nil {
			return fmt.Errorf("assign roles: %w", err)
		}
		if int(tag.RowsAffected()) != len(u.Roles) {
			return fmt.Errorf("assign roles %v: %w", u.Roles, repository.ErrNotFound)
		}
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, selectUser+`WHERE u.id = $1 GROUP BY u.id`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, selectUser+`WHERE u.email = $1 GROUP BY u.id`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var roles []string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt, &roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	for _, name := range roles {
		u.Roles = append(u.Roles, entity.RoleName(name))
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, avatar_url = $2, updated_at = $3
		WHERE id = $4
	`, u.Name, u.AvatarURL, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
