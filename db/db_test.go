package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Helper function to setup PostgreSQL container using testcontainers
func setupPostgresContainer(t *testing.T) (*UserDB, func()) {
	if testing.Short() {
		t.Skip("skipping database tests in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:13",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("could not start container: %s", err)
	}

	// Get the container's host and port
	host, _ := postgresC.Host(ctx)
	port, _ := postgresC.MappedPort(ctx, "5432/tcp")

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	t.Setenv("DATABASE_URL", connStr)

	logger := zerolog.New(os.Stdout)
	userDB, err := NewUserDB(&logger)
	if err != nil {
		postgresC.Terminate(ctx)
		t.Fatalf("failed to connect to test database: %s", err)
	}

	if err := userDB.Migrate(); err != nil {
		userDB.Close()
		postgresC.Terminate(ctx)
		t.Fatalf("failed to migrate test database: %s", err)
	}

	return userDB, func() {
		userDB.Close()
		postgresC.Terminate(ctx)
	}
}

func TestUserDB(t *testing.T) {
	userDB, cleanup := setupPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("get or create group is idempotent", func(t *testing.T) {
		group, created, err := userDB.GetOrCreateGroup(ctx, "Reviewers")
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := userDB.GetOrCreateGroup(ctx, "Reviewers")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, group.ID, again.ID)

		var count int
		err = userDB.DB.QueryRow(`SELECT COUNT(*) FROM groups WHERE name = $1`, "Reviewers").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := userDB.GetGroupByName(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, ErrGroupNotFound))
	})

	t.Run("create update and find users", func(t *testing.T) {
		user, err := userDB.CreateUser(ctx, &models.User{
			Email:     "jane.doe@dept.gov.au",
			FirstName: "Jane",
			LastName:  "Doe",
			IsStaff:   true,
			IsActive:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "jane.doe@dept.gov.au", user.Username)

		found, err := userDB.GetUserByEmail(ctx, "jane.doe@dept.gov.au")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)

		found.FirstName = "Janet"
		require.NoError(t, userDB.UpdateUser(ctx, found))

		updated, err := userDB.GetUserByEmail(ctx, "jane.doe@dept.gov.au")
		require.NoError(t, err)
		assert.Equal(t, "Janet", updated.FirstName)

		missing, err := userDB.GetUserByEmail(ctx, "nobody@dept.gov.au")
		assert.NoError(t, err)
		assert.Nil(t, missing)

		err = userDB.UpdateUser(ctx, &models.User{ID: uuid.New()})
		assert.Error(t, err)
	})

	t.Run("bulk link active users by suffix", func(t *testing.T) {
		_, err := userDB.CreateUser(ctx, &models.User{Email: "john@dept.gov.au", IsActive: true})
		require.NoError(t, err)
		_, err = userDB.CreateUser(ctx, &models.User{Email: "inactive@dept.gov.au", IsActive: false})
		require.NoError(t, err)
		_, err = userDB.CreateUser(ctx, &models.User{Email: "someone@subdept.gov.au", IsActive: true})
		require.NoError(t, err)

		users, err := userDB.GetActiveUsersByEmailSuffix(ctx, []string{"@dept.gov.au"})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		for _, u := range users {
			assert.True(t, u.IsActive)
		}

		group, _, err := userDB.GetOrCreateGroup(ctx, "DBCA_Users")
		require.NoError(t, err)

		ids := []uuid.UUID{users[0].ID, users[1].ID}
		created, err := userDB.LinkUsersToGroup(ctx, ids, group.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, created)

		// Second pass confirms the existing links
		created, err = userDB.LinkUsersToGroup(ctx, ids, group.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, created)

		members, err := userDB.GetGroupMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2)

		groups, err := userDB.GetGroups(ctx)
		require.NoError(t, err)
		counts := map[string]int{}
		for _, g := range groups {
			counts[g.Name] = g.MemberCount
		}
		assert.Equal(t, 2, counts["DBCA_Users"])
		assert.Equal(t, 0, counts["Reviewers"])
	})

	t.Run("no suffixes selects nobody", func(t *testing.T) {
		users, err := userDB.GetActiveUsersByEmailSuffix(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, users)
	})
}

