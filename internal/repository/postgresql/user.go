package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	u.id, u.organization_id, u.email, u.password_hash, u.full_name, u.role,
	u.google_id, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.GoogleID, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string, organizationID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.id = $1 AND u.organization_id = $2
	`, userColumns)

	u, err := scanUser(q.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.email = $1
	`, userColumns)

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// GetByGoogleID implements user.UserRepository.
func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.google_id = $1
	`, userColumns)

	u, err := scanUser(q.QueryRow(ctx, query, googleID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by google ID: %w", err)
	}

	return u, nil
}

// GetAdminsByOrganization implements user.UserRepository.
func (r *userRepository) GetAdminsByOrganization(ctx context.Context, organizationID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.organization_id = $1 AND u.role = $2
	`, userColumns)

	rows, err := q.Query(ctx, query, organizationID, user.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization admins: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, nil
}
