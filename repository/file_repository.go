package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

// IFileRepository covers upload_files and their owner links. Methods taking a
// tx run on the database when tx is nil.
type IFileRepository interface {
	Create(ctx context.Context, tx *sql.Tx, file *model.UploadFile) error
	GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.UploadFile, error)
	Delete(ctx context.Context, id int64) error
	CreateLink(ctx context.Context, tx *sql.Tx, link *model.UploadFileLink) error
	DeleteLinks(ctx context.Context, tx *sql.Tx, ownerTable string, ownerID int64, role *model.FileRole, fileIDs []int64) (int64, error)
	DeleteLinksByFile(ctx context.Context, fileID int64) error
	ListLinked(ctx context.Context, ownerTable string, ownerID int64, role *model.FileRole) ([]model.LinkedFile, error)
	CountLinked(ctx context.Context, ownerTable string, ownerIDs []int64) (map[int64]model.FileCounts, error)
}

type FileRepository struct {
	baseRepository
}

func NewFileRepository(conn *sql.DB, dialect db.Dialect) *FileRepository {
	return &FileRepository{baseRepository: newBase(conn, dialect)}
}

// DownloadURL is the public download path of a stored file.
func DownloadURL(id int64) string {
	return fmt.Sprintf("/api/public/files/download/%d", id)
}

func (r *FileRepository) Create(ctx context.Context, tx *sql.Tx, file *model.UploadFile) error {
	log := logger.Log.WithFields(logrus.Fields{
		"file_name":     file.FileName,
		"original_name": file.OriginalName,
		"size":          file.Size,
	})
	log.Info("Executing query to create an upload file")

	now := common.Now()
	file.CreatedAt, file.UpdatedAt = now, now
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("upload_files").
		Columns("server_path", "file_name", "original_name", "mime_type", "ext", "size",
			"created_by", "updated_by", "created_at", "updated_at").
		Values(file.ServerPath, file.FileName, file.OriginalName, file.MimeType, file.Ext, file.Size,
			nullable(file.CreatedBy), nullable(file.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create upload file query")
		return err
	}
	file.ID = id
	file.DownloadURL = DownloadURL(id)
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.UploadFile, error) {
	log := logger.Log.WithField("file_id", id)

	row, err := r.queryRowIn(ctx, r.runner(tx), r.sb().
		Select("id", "server_path", "file_name", "original_name", "mime_type", "ext", "size",
			"created_by", "updated_by", "created_at", "updated_at").
		From("upload_files").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var (
		f                    model.UploadFile
		mimeType, ext        sql.NullString
		createdBy, updatedBy sql.NullInt64
	)
	err = row.Scan(&f.ID, &f.ServerPath, &f.FileName, &f.OriginalName, &mimeType, &ext, &f.Size,
		&createdBy, &updatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get upload file query")
		}
		return nil, err
	}
	f.MimeType = mimeType.String
	f.Ext = ext.String
	f.CreatedBy = int64Ptr(createdBy)
	f.UpdatedBy = int64Ptr(updatedBy)
	f.DownloadURL = DownloadURL(f.ID)
	return &f, nil
}

func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.Log.WithField("file_id", id)
	log.Info("Executing query to delete an upload file")

	if _, err := r.exec(ctx, r.DB, r.sb().Delete("upload_files").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete upload file query")
		return err
	}
	return nil
}

func (r *FileRepository) CreateLink(ctx context.Context, tx *sql.Tx, link *model.UploadFileLink) error {
	log := logger.Log.WithFields(logrus.Fields{
		"file_id":     link.FileID,
		"owner_table": link.OwnerTable,
		"owner_id":    link.OwnerID,
		"role":        link.Role,
	})
	log.Info("Executing query to link a file")

	link.CreatedAt = common.Now()
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("upload_file_links").
		Columns("file_id", "owner_table", "owner_id", "role", "sort_order", "created_at").
		Values(link.FileID, link.OwnerTable, link.OwnerID, string(link.Role), link.SortOrder, link.CreatedAt))
	if err != nil {
		log.WithError(err).Error("Failed to execute create file link query")
		return err
	}
	link.ID = id
	return nil
}

// DeleteLinks removes links of an owner. A nil role matches every role and an
// empty fileIDs matches every file.
func (r *FileRepository) DeleteLinks(ctx context.Context, tx *sql.Tx, ownerTable string, ownerID int64, role *model.FileRole, fileIDs []int64) (int64, error) {
	where := sq.Eq{"owner_table": ownerTable, "owner_id": ownerID}
	if role != nil {
		where["role"] = string(*role)
	}
	if len(fileIDs) > 0 {
		where["file_id"] = fileIDs
	}

	n, err := r.exec(ctx, r.runner(tx), r.sb().Delete("upload_file_links").Where(where))
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"owner_table": ownerTable,
			"owner_id":    ownerID,
		}).Error("Failed to execute delete file links query")
		return 0, err
	}
	return n, nil
}

func (r *FileRepository) DeleteLinksByFile(ctx context.Context, fileID int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Delete("upload_file_links").Where(sq.Eq{"file_id": fileID}))
	return err
}

// ListLinked returns the files linked to an owner ordered by sort order.
func (r *FileRepository) ListLinked(ctx context.Context, ownerTable string, ownerID int64, role *model.FileRole) ([]model.LinkedFile, error) {
	q := r.sb().Select("f.id", "f.original_name", "f.ext", "f.mime_type", "f.size", "l.role", "l.sort_order").
		From("upload_file_links l").
		Join("upload_files f ON f.id = l.file_id").
		Where(sq.Eq{"l.owner_table": ownerTable, "l.owner_id": ownerID}).
		OrderBy("l.sort_order ASC", "l.id ASC")
	if role != nil {
		q = q.Where(sq.Eq{"l.role": string(*role)})
	}

	rows, err := r.query(ctx, q)
	if err != nil {
		logger.Log.WithError(err).WithField("owner_id", ownerID).Error("Failed to execute list linked files query")
		return nil, err
	}
	defer rows.Close()

	files := make([]model.LinkedFile, 0)
	for rows.Next() {
		var (
			f             model.LinkedFile
			ext, mimeType sql.NullString
			fileRole      string
		)
		if err := rows.Scan(&f.FileID, &f.OriginalName, &ext, &mimeType, &f.Size, &fileRole, &f.SortOrder); err != nil {
			return nil, err
		}
		f.Ext = ext.String
		f.MimeType = mimeType.String
		f.Role = model.FileRole(fileRole)
		f.DownloadURL = DownloadURL(f.FileID)
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountLinked counts links per owner and role.
func (r *FileRepository) CountLinked(ctx context.Context, ownerTable string, ownerIDs []int64) (map[int64]model.FileCounts, error) {
	counts := make(map[int64]model.FileCounts, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return counts, nil
	}

	rows, err := r.query(ctx, r.sb().Select("owner_id", "role", "COUNT(*)").
		From("upload_file_links").
		Where(sq.Eq{"owner_table": ownerTable, "owner_id": ownerIDs}).
		GroupBy("owner_id", "role"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute count linked files query")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID int64
			role    string
			n       int64
		)
		if err := rows.Scan(&ownerID, &role, &n); err != nil {
			return nil, err
		}
		if counts[ownerID] == nil {
			counts[ownerID] = model.FileCounts{}
		}
		counts[ownerID][model.FileRole(role)] = n
	}
	return counts, rows.Err()
}
