package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fizl-health/fizl-backend/internal/domain"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(f *domain.UserFile) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.db.Exec(
		`INSERT INTO user_files (id, user_id, file_name, file_path, file_size, mime_type, description, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.FileName, f.FilePath, f.FileSize, f.MimeType, f.Description, f.UploadedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(id string) (*domain.UserFile, error) {
	var f domain.UserFile
	err := r.db.QueryRow(
		`SELECT id, user_id, file_name, file_path, file_size, mime_type, description, uploaded_by, created_at
		 FROM user_files WHERE id = ?`, id,
	).Scan(&f.ID, &f.UserID, &f.FileName, &f.FilePath, &f.FileSize, &f.MimeType, &f.Description, &f.UploadedBy, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return &f, nil
}

func (r *FileRepository) ListByUser(userID string) ([]domain.UserFile, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, file_name, file_path, file_size, mime_type, description, uploaded_by, created_at
		 FROM user_files WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer rows.Close()

	var files []domain.UserFile
	for rows.Next() {
		var f domain.UserFile
		if err := rows.Scan(&f.ID, &f.UserID, &f.FileName, &f.FilePath, &f.FileSize, &f.MimeType, &f.Description, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *FileRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM user_files WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete file record: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete file record: %w", err)
	}
	return rows > 0, nil
}
