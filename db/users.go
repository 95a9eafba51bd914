package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const userColumns = `id, username, email, first_name, last_name, is_staff, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.IsStaff,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt)
	return u, err
}

// GetUserByEmail retrieves a single user by exact email match.
func (u *UserDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	row := u.DB.QueryRowContext(ctx, query, email)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			// User does not exist, return nil user and nil error
			return nil, nil
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a new user. The username defaults to the email address.
func (u *UserDB) CreateUser(ctx context.Context, req *models.User) (*models.User, error) {

	user := *req
	user.ID = uuid.New()
	if user.Username == "" {
		user.Username = user.Email
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err := u.execQuery(ctx, `
		INSERT INTO users (id, username, email, first_name, last_name, is_staff, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.IsStaff, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return &user, nil
}

// UpdateUser saves the name and staff fields of an existing user.
func (u *UserDB) UpdateUser(ctx context.Context, user *models.User) error {

	user.UpdatedAt = time.Now().UTC()

	affected, err := u.execQuery(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, is_staff = $3, updated_at = $4 WHERE id = $5`,
		user.FirstName, user.LastName, user.IsStaff, user.UpdatedAt, user.ID)
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("error updating user: no user with id %s", user.ID)
	}

	return nil
}

// GetActiveUsersByEmailSuffix retrieves active users whose email ends with any of the given suffixes.
func (u *UserDB) GetActiveUsersByEmailSuffix(ctx context.Context, suffixes []string) ([]models.User, error) {
	if len(suffixes) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.is_active = TRUE
		AND EXISTS (
			SELECT 1 FROM unnest($1::text[]) AS s(suffix)
			WHERE right(u.email, length(s.suffix)) = s.suffix
		)
		ORDER BY u.email`
	rows, err := u.DB.QueryContext(ctx, query, pq.Array(suffixes))
	if err != nil {
		return nil, fmt.Errorf("error retrieving users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
