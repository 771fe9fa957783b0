package database

import (
	"context"

	"github.com/bboykorg/filecloude/internal/models"
)

func (q *Queries) CreateFile(ctx context.Context, userID int64, filename string) (*models.File, error) {
	query := `
		INSERT INTO files (user_id, filename)
		VALUES ($1, $2)
		RETURNING id, user_id, filename, uploaded_at
	`
	var file models.File
	err := q.db.QueryRow(ctx, query, userID, filename).Scan(
		&file.ID,
		&file.UserID,
		&file.Filename,
		&file.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// ListFilesForUser returns every file row owned by userID. Row order is
// whatever the backing store produces; callers must not rely on it.
func (q *Queries) ListFilesForUser(ctx context.Context, userID int64) ([]models.File, error) {
	query := `
		SELECT id, user_id, filename, uploaded_at
		FROM files
		WHERE user_id = $1
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Filename,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if files == nil {
		return []models.File{}, nil
	}

	return files, nil
}

func (q *Queries) FileExists(ctx context.Context, userID int64, filename string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM files WHERE user_id = $1 AND filename = $2)"
	err := q.db.QueryRow(ctx, query, userID, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteFile removes zero or one matching row. Deleting a pair that
// does not exist is not an error.
func (q *Queries) DeleteFile(ctx context.Context, userID int64, filename string) error {
	query := `DELETE FROM files WHERE user_id = $1 AND filename = $2`
	_, err := q.db.Exec(ctx, query, userID, filename)
	return err
}
