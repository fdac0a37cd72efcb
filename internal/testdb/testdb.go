// Package testdb provides a disposable Postgres-backed GORM handle for
// integration tests. Each call spins up its own container; Docker is
// required to run these tests.
package testdb

import (
	"context"
	"testing"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campushub/forum/backend/internal/database"
	"github.com/campushub/forum/backend/internal/models"
)

// New starts a Postgres container, migrates the forum schema and returns
// the GORM handle. The container is terminated on test cleanup.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("forum_test"),
		tcpostgres.WithUsername("forum"),
		tcpostgres.WithPassword("forum"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts a user with sane defaults and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.edu",
		Password: "not-a-real-hash",
		FullName: username,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user %q: %v", username, err)
	}
	return user
}

// CreatePost inserts a post authored by the given user and returns it.
func CreatePost(t *testing.T, db *gorm.DB, author models.User, title string) models.Post {
	t.Helper()
	post := models.Post{
		Title:      title,
		Content:    "content of " + title,
		Tags:       "[]",
		AuthorID:   author.ID,
		AuthorName: author.FullName,
		AuthorRole: author.Role,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("failed to create test post %q: %v", title, err)
	}
	return post
}

// CreateComment inserts a comment (or reply when parent is non-nil).
func CreateComment(t *testing.T, db *gorm.DB, author models.User, post models.Post, parent *models.Comment) models.Comment {
	t.Helper()
	comment := models.Comment{
		Content:    "a comment",
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorName: author.FullName,
		AuthorRole: author.Role,
	}
	if parent != nil {
		comment.ParentCommentID = &parent.ID
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}
