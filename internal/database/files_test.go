package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndListFiles(t *testing.T) {
	user := createRandomUser(t, "files_list_test")

	file, err := testStore.CreateFile(context.Background(), user.ID, "report.pdf")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", file.Filename)
	require.Equal(t, user.ID, file.UserID)
	require.NotZero(t, file.ID)

	_, err = testStore.CreateFile(context.Background(), user.ID, "notes.txt")
	require.NoError(t, err)

	files, err := testStore.ListFilesForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Row order is unspecified; compare as a set.
	names := map[string]bool{}
	for _, f := range files {
		names[f.Filename] = true
	}
	require.True(t, names["report.pdf"])
	require.True(t, names["notes.txt"])
}

func TestListFilesForUser_Empty(t *testing.T) {
	user := createRandomUser(t, "files_empty_test")

	files, err := testStore.ListFilesForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, files)
	require.Empty(t, files)
}

func TestListFilesForUser_IsolatedPerUser(t *testing.T) {
	alice := createRandomUser(t, "files_alice")
	bob := createRandomUser(t, "files_bob")

	_, err := testStore.CreateFile(context.Background(), alice.ID, "alice.txt")
	require.NoError(t, err)

	files, err := testStore.ListFilesForUser(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestFileExists(t *testing.T) {
	user := createRandomUser(t, "files_exists_test")

	exists, err := testStore.FileExists(context.Background(), user.ID, "missing.txt")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = testStore.CreateFile(context.Background(), user.ID, "present.txt")
	require.NoError(t, err)

	exists, err = testStore.FileExists(context.Background(), user.ID, "present.txt")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDeleteFile_Idempotent(t *testing.T) {
	user := createRandomUser(t, "files_delete_test")

	_, err := testStore.CreateFile(context.Background(), user.ID, "to_delete.txt")
	require.NoError(t, err)

	err = testStore.DeleteFile(context.Background(), user.ID, "to_delete.txt")
	require.NoError(t, err)

	exists, err := testStore.FileExists(context.Background(), user.ID, "to_delete.txt")
	require.NoError(t, err)
	require.False(t, exists)

	// Deleting the same pair again must not be an error.
	err = testStore.DeleteFile(context.Background(), user.ID, "to_delete.txt")
	require.NoError(t, err)
}

func TestExecTx_RollsBackWholeBatch(t *testing.T) {
	user := createRandomUser(t, "files_tx_test")

	failure := errors.New("mid-batch failure")
	err := testStore.ExecTx(context.Background(), func(q *Queries) error {
		if _, err := q.CreateFile(context.Background(), user.ID, "first.txt"); err != nil {
			return err
		}
		if _, err := q.CreateFile(context.Background(), user.ID, "second.txt"); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	files, err := testStore.ListFilesForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Empty(t, files, "no row of the failed batch may be committed")
}

func TestLogEventAndGetEventsSince(t *testing.T) {
	user := createRandomUser(t, "events_test")

	err := testStore.LogEvent(context.Background(), user.ID, "files_uploaded", map[string]interface{}{"filenames": []string{"a.txt"}})
	require.NoError(t, err)
	err = testStore.LogEvent(context.Background(), user.ID, "file_deleted", map[string]interface{}{"filename": "a.txt"})
	require.NoError(t, err)

	events, err := testStore.GetEventsSince(context.Background(), user.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "files_uploaded", events[0].EventType)
	require.Equal(t, "file_deleted", events[1].EventType)

	newer, err := testStore.GetEventsSince(context.Background(), user.ID, events[0].ID)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	require.Equal(t, "file_deleted", newer[0].EventType)
}
