package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/task"
)

func taskColumnNames() []string {
	return []string{"id", "project_id", "title", "description", "status", "priority",
		"assignees", "due_date", "completed_at", "created_at", "updated_at"}
}

func TestTaskRepo_Get(t *testing.T) {
	t.Run("Should get task by ID successfully", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		ctx := context.Background()
		taskID := core.MustNewID()
		projectID := core.MustNewID()
		now := time.Now().UTC()
		rows := mockPool.NewRows(taskColumnNames()).
			AddRow(taskID, projectID, "Ship release", "cut the tag", task.StatusInProgress,
				"high", []byte(`["alice@example.com"]`), nil, nil, now, now)
		mockPool.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
			WithArgs(taskID).
			WillReturnRows(rows)
		result, err := repo.Get(ctx, taskID)
		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, taskID, result.ID)
		assert.Equal(t, projectID, result.ProjectID)
		assert.Equal(t, task.StatusInProgress, result.Status)
		assert.Equal(t, []string{"alice@example.com"}, result.Assignees)
		assert.Nil(t, result.DueDate)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return not-found error when task is missing", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		taskID := core.MustNewID()
		mockPool.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
			WithArgs(taskID).
			WillReturnError(pgx.ErrNoRows)
		result, err := repo.Get(context.Background(), taskID)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, store.ErrTaskNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTaskRepo_Create(t *testing.T) {
	t.Run("Should insert task with defaults applied", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		projectID := core.MustNewID()
		mockPool.ExpectExec("INSERT INTO tasks").
			WithArgs(pgxmock.AnyArg(), projectID, "Write docs", "", task.StatusTodo, "medium",
				[]byte(`[]`), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		created, err := repo.Create(context.Background(), &task.CreateInput{
			ProjectID: projectID,
			Title:     "Write docs",
		})
		assert.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, task.StatusTodo, created.Status)
		assert.Equal(t, "medium", created.Priority)
		assert.NotNil(t, created.Assignees)
		assert.False(t, created.ID.IsZero())
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTaskRepo_Update(t *testing.T) {
	t.Run("Should update only the provided fields", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		taskID := core.MustNewID()
		projectID := core.MustNewID()
		now := time.Now().UTC()
		status := task.StatusDone
		mockPool.ExpectExec("UPDATE tasks SET").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		rows := mockPool.NewRows(taskColumnNames()).
			AddRow(taskID, projectID, "Ship release", "", status,
				"high", []byte(`[]`), nil, now, now, now)
		mockPool.ExpectQuery("SELECT (.+) FROM tasks WHERE id = \\$1").
			WithArgs(taskID).
			WillReturnRows(rows)
		updated, err := repo.Update(context.Background(), taskID, &task.UpdateInput{Status: &status})
		assert.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, task.StatusDone, updated.Status)
		require.NotNil(t, updated.CompletedAt)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return not-found error when no row is updated", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		title := "renamed"
		mockPool.ExpectExec("UPDATE tasks SET").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		updated, err := repo.Update(context.Background(), core.MustNewID(), &task.UpdateInput{Title: &title})
		assert.Nil(t, updated)
		assert.True(t, errors.Is(err, store.ErrTaskNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestTaskRepo_ListDueBetween(t *testing.T) {
	t.Run("Should list open tasks inside the window", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()
		repo := store.NewTaskRepo(mockPool)
		projectID := core.MustNewID()
		now := time.Now().UTC()
		due := now.Add(6 * time.Hour)
		rows := mockPool.NewRows(taskColumnNames()).
			AddRow(core.MustNewID(), projectID, "Pay invoice", "", task.StatusTodo,
				"medium", []byte(`[]`), due, nil, now, now)
		mockPool.ExpectQuery("SELECT (.+) FROM tasks WHERE due_date > \\$1 AND due_date <= \\$2").
			WithArgs(now, now.Add(24*time.Hour)).
			WillReturnRows(rows)
		tasks, err := repo.ListDueBetween(context.Background(), now, now.Add(24*time.Hour))
		assert.NoError(t, err)
		require.Len(t, tasks, 1)
		require.NotNil(t, tasks[0].DueDate)
		assert.True(t, tasks[0].DueDate.Equal(due))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
