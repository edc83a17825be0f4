package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/research_hub/internal/domain"
	"github.com/immxrtalbeast/research_hub/internal/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Collaborator{},
		&model.Attachment{},
		&model.ChatMessage{},
	))

	return db
}

func TestGormUserRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := domain.NewUser("Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.False(t, got.Suspended)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.NewUser("Ada", "ada@example.com")))

	err := repo.Create(ctx, domain.NewUser("Imposter", "ada@example.com"))
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestGormUserRepository_UpdateSuspends(t *testing.T) {
	db := setupDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := domain.NewUser("Ada", "ada@example.com")
	require.NoError(t, repo.Create(ctx, user))

	user.Suspended = true
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Suspended)
}

func TestGormProjectRepository_Collaborators(t *testing.T) {
	db := setupDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	project := domain.NewProject("genomics", uuid.New())
	require.NoError(t, repo.Create(ctx, project))

	got, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.OwnerID, got.OwnerID)

	userID := uuid.New()
	require.NoError(t, repo.AddCollaborator(ctx, project.ID, userID, domain.RoleViewer))

	role, err := repo.CollaboratorRole(ctx, project.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, role)

	err = repo.AddCollaborator(ctx, project.ID, userID, domain.RoleCollaborator)
	assert.ErrorIs(t, err, ErrCollaboratorExists)

	require.NoError(t, repo.RemoveCollaborator(ctx, project.ID, userID))

	_, err = repo.CollaboratorRole(ctx, project.ID, userID)
	assert.ErrorIs(t, err, ErrCollaboratorNotFound)

	err = repo.RemoveCollaborator(ctx, project.ID, userID)
	assert.ErrorIs(t, err, ErrCollaboratorNotFound)
}

func TestGormMessageRepository_AppendAndLatest(t *testing.T) {
	db := setupDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	sender := &domain.Identity{UserID: uuid.New(), Name: "Ada"}

	for _, text := range []string{"one", "two", "three"} {
		msg := domain.NewChatMessage(projectID, sender, text, nil)
		require.NoError(t, repo.Append(ctx, msg))
	}

	history, err := repo.Latest(ctx, projectID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Body)
	assert.Equal(t, "three", history[1].Body)
	assert.True(t, history[0].CreatedAt.Before(history[1].CreatedAt))

	history, err = repo.Latest(ctx, projectID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	history, err = repo.Latest(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGormMessageRepository_RejectsEmptyMessage(t *testing.T) {
	db := setupDB(t)
	repo := NewGormMessageRepository(db)

	sender := &domain.Identity{UserID: uuid.New(), Name: "Ada"}
	msg := domain.NewChatMessage(uuid.New(), sender, "", nil)

	err := repo.Append(context.Background(), msg)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestGormMessageRepository_AttachmentRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	sender := &domain.Identity{UserID: uuid.New(), Name: "Ada"}

	content := []byte("%PDF-1.7 twelve pages of results")
	attachment := domain.NewAttachment("results.pdf", content)
	msg := domain.NewChatMessage(projectID, sender, "see attached", attachment)
	require.NoError(t, repo.Append(ctx, msg))

	// History carries attachment metadata but not the blob.
	history, err := repo.Latest(ctx, projectID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Attachment)
	assert.Equal(t, "results.pdf", history[0].Attachment.FileName)
	assert.Equal(t, "application/pdf", history[0].Attachment.ContentType)
	assert.Empty(t, history[0].Attachment.Data)

	got, err := repo.FetchAttachment(ctx, attachment.ID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, content, got.Data)
	assert.Equal(t, "results.pdf", got.FileName)
	assert.Equal(t, "application/pdf", got.ContentType)

	got, err = repo.FetchAttachment(ctx, attachment.ID, ".PDF")
	require.NoError(t, err)
	assert.Equal(t, "results.pdf", got.FileName)

	_, err = repo.FetchAttachment(ctx, attachment.ID, "exe")
	assert.ErrorIs(t, err, ErrAttachmentNotFound)

	_, err = repo.FetchAttachment(ctx, uuid.New(), "pdf")
	assert.ErrorIs(t, err, ErrAttachmentNotFound)
}
