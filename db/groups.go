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

// GetOrCreateGroup returns the group with the given name, creating it when absent.
// The boolean reports whether the group was created by this call.
func (u *UserDB) GetOrCreateGroup(ctx context.Context, name string) (*models.Group, bool, error) {
	query := `
		INSERT INTO groups (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name, created_at`

	var group models.Group
	err := u.DB.QueryRowContext(ctx, query, uuid.New(), name, time.Now().UTC()).
		Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err == nil {
		return &group, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("error creating group: %w", err)
	}

	// Name already taken, fetch the existing row
	existing, err := u.GetGroupByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetGroupByName retrieves a group by exact name, returning ErrGroupNotFound when absent.
func (u *UserDB) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE name = $1`

	var group models.Group
	err := u.DB.QueryRowContext(ctx, query, name).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
		}
		return nil, fmt.Errorf("error scanning group: %w", err)
	}
	return &group, nil
}

// LinkUsersToGroup links every user to the group, leaving existing links untouched.
// It returns the number of links created by this call.
func (u *UserDB) LinkUsersToGroup(ctx context.Context, userIDs []uuid.UUID, groupID uuid.UUID) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}

	created, err := u.execQuery(ctx, `
		INSERT INTO group_users (user_id, group_id, created_at)
		SELECT user_id, $2, $3 FROM unnest($1::uuid[]) AS t(user_id)
		ON CONFLICT (user_id, group_id) DO NOTHING`,
		pq.Array(ids), groupID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("error linking users to group: %w", err)
	}

	return int(created), nil
}

// GetGroups retrieves all groups with their member counts.
func (u *UserDB) GetGroups(ctx context.Context) ([]models.GroupSummary, error) {
	query := `
		SELECT g.id, g.name, g.created_at, COUNT(gu.user_id)
		FROM groups g
		LEFT JOIN group_users gu ON gu.group_id = g.id
		GROUP BY g.id, g.name, g.created_at
		ORDER BY g.name`
	rows, err := u.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving groups: %w", err)
	}
	defer rows.Close()

	var groups []models.GroupSummary
	for rows.Next() {
		var g models.GroupSummary
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// GetGroupMembers retrieves the users linked to a group.
func (u *UserDB) GetGroupMembers(ctx context.Context, groupID uuid.UUID) ([]models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.is_staff, u.is_active, u.created_at, u.updated_at
		FROM users u
		INNER JOIN group_users gu ON gu.user_id = u.id
		WHERE gu.group_id = $1
		ORDER BY u.email`
	rows, err := u.DB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving group members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning group member: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}
	return users, nil
}
