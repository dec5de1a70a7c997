package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	tempDirName    = "temp"
	tempURLPrefix  = "/api/public/files/temp/"
	defaultMaxSize = 10 << 20
)

// TempURL is the public preview path of a temp upload.
func TempURL(tempID string) string {
	return tempURLPrefix + tempID
}

// FileService stores uploads on local disk. New uploads land in
// {uploadDir}/temp and are promoted to {uploadDir}/{yyyy}/{MM} when an owner
// links them.
type FileService struct {
	repo      repository.IFileRepository
	uploadDir string
	maxSize   int64
}

func NewFileService(repo repository.IFileRepository, uploadDir string, maxSize int64) *FileService {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &FileService{repo: repo, uploadDir: uploadDir, maxSize: maxSize}
}

func (s *FileService) MaxSize() int64 {
	return s.maxSize
}

func (s *FileService) tempDir() string {
	return filepath.Join(s.uploadDir, tempDirName)
}

// UploadTemp writes src into the temp area under a fresh uuid.
func (s *FileService) UploadTemp(ctx context.Context, fileName string, src io.Reader) (*model.TempUpload, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: empty file name", common.ErrFileUploadFailed)
	}
	if err := os.MkdirAll(s.tempDir(), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}

	id := uuid.NewString()
	ext := extensionOf(fileName)
	path := filepath.Join(s.tempDir(), storedName(id, ext))

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return nil, common.ErrFileTooLarge
	}

	upload := &model.TempUpload{
		TempFileID: id,
		FileName:   fileName,
		Size:       written,
		MimeType:   detectMimeType(path, ext),
		Extension:  ext,
		PreviewURL: TempURL(id),
	}
	logger.Log.WithFields(logrus.Fields{
		"temp_file_id": id,
		"file_name":    fileName,
		"size":         written,
	}).Info("Temp file uploaded")
	return upload, nil
}

// UploadBase64 decodes data, optionally prefixed with a data URL header, and
// stores it as a temp upload.
func (s *FileService) UploadBase64(ctx context.Context, req model.Base64UploadRequest) (*model.TempUpload, error) {
	data := req.Data
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	if int64(base64.StdEncoding.DecodedLen(len(data))) > s.maxSize+2 {
		return nil, common.ErrFileTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 data", common.ErrInvalidInput)
	}
	return s.UploadTemp(ctx, req.FileName, bytes.NewReader(raw))
}

func (s *FileService) findTemp(tempID string) (string, error) {
	if _, err := uuid.Parse(tempID); err != nil {
		return "", common.ErrFileNotFound
	}
	matches, err := filepath.Glob(filepath.Join(s.tempDir(), tempID+"*"))
	if err != nil || len(matches) == 0 {
		return "", common.ErrFileNotFound
	}
	return matches[0], nil
}

// OpenTemp opens a temp upload. The caller closes the file.
func (s *FileService) OpenTemp(ctx context.Context, tempID string) (*os.File, *model.TempUpload, error) {
	path, err := s.findTemp(tempID)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, common.ErrFileNotFound
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, common.ErrFileNotFound
	}
	ext := extensionOf(path)
	return f, &model.TempUpload{
		TempFileID: tempID,
		FileName:   filepath.Base(path),
		Size:       info.Size(),
		MimeType:   detectMimeType(path, ext),
		Extension:  ext,
		PreviewURL: TempURL(tempID),
	}, nil
}

func (s *FileService) Info(ctx context.Context, id int64) (*model.UploadFile, error) {
	return fileByID(ctx, s.repo, nil, id)
}

func fileByID(ctx context.Context, repo repository.IFileRepository, tx *sql.Tx, id int64) (*model.UploadFile, error) {
	file, err := repo.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

func (s *FileService) Exists(ctx context.Context, id int64) (bool, error) {
	file, err := s.Info(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrFileNotFound) {
			return false, nil
		}
		return false, err
	}
	_, err = os.Stat(s.absPath(file))
	return err == nil, nil
}

// Open returns the stored bytes of a file. The caller closes the file.
func (s *FileService) Open(ctx context.Context, id int64) (*os.File, *model.UploadFile, error) {
	file, err := s.Info(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(s.absPath(file))
	if err != nil {
		logger.Log.WithError(err).WithField("file_id", id).Warn("Stored file missing on disk")
		return nil, nil, common.ErrFileNotFound
	}
	return f, file, nil
}

// Delete removes the links, the row and the bytes of a file.
func (s *FileService) Delete(ctx context.Context, id int64) error {
	file, err := s.Info(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLinksByFile(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(s.absPath(file)); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).WithField("file_id", id).Warn("Could not remove stored file")
	}
	logger.Log.WithField("file_id", id).Info("File deleted")
	return nil
}

func (s *FileService) absPath(file *model.UploadFile) string {
	return filepath.Join(s.uploadDir, filepath.FromSlash(file.ServerPath))
}

// InTx runs fn in a transaction on conn. Files promoted through the linker
// stay in dated storage only when the transaction commits; otherwise they go
// back to the temp area.
func (s *FileService) InTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx, files *FileLinker) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	files := s.Linker(tx)
	defer files.Restore()

	if err := fn(tx, files); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	files.Commit()
	return nil
}

// FileLinker writes owner links inside one transaction and remembers the
// temp uploads it promoted. A nil tx writes straight to the database.
type FileLinker struct {
	s     *FileService
	tx    *sql.Tx
	moves []fileMove
	done  bool
}

type fileMove struct {
	from, to string
}

func (s *FileService) Linker(tx *sql.Tx) *FileLinker {
	return &FileLinker{s: s, tx: tx}
}

// Commit keeps the promoted files where they are.
func (l *FileLinker) Commit() {
	l.done = true
}

// Restore moves every promoted file back to the temp area unless Commit was
// called. Files that cannot be moved back are removed.
func (l *FileLinker) Restore() {
	if l.done {
		return
	}
	l.done = true
	for i := len(l.moves) - 1; i >= 0; i-- {
		m := l.moves[i]
		if err := os.Rename(m.to, m.from); err != nil {
			logger.Log.WithError(err).WithField("path", m.to).Warn("Could not restore promoted file, removing it")
			os.Remove(m.to)
		}
	}
	l.moves = nil
}

// promote moves a temp upload into dated storage and records it.
func (l *FileLinker) promote(ctx context.Context, tempID, originalName string, actorID *int64) (*model.UploadFile, error) {
	s := l.s
	src, err := s.findTemp(tempID)
	if err != nil {
		return nil, err
	}
	ext := extensionOf(src)
	if originalName = strings.TrimSpace(originalName); originalName == "" {
		originalName = filepath.Base(src)
	}

	now := common.Now()
	relDir := filepath.Join(now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(filepath.Join(s.uploadDir, relDir), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}
	name := storedName(uuid.NewString(), ext)
	relPath := filepath.Join(relDir, name)
	dst := filepath.Join(s.uploadDir, relPath)
	if err := os.Rename(src, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}
	l.moves = append(l.moves, fileMove{from: src, to: dst})

	info, err := os.Stat(dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFileUploadFailed, err)
	}
	file := &model.UploadFile{
		ServerPath:   filepath.ToSlash(relPath),
		FileName:     name,
		OriginalName: originalName,
		MimeType:     detectMimeType(dst, ext),
		Ext:          ext,
		Size:         info.Size(),
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}
	if err := s.repo.Create(ctx, l.tx, file); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"temp_file_id": tempID,
		"file_id":      file.ID,
	}).Info("Temp file promoted")
	return file, nil
}

// LinkFiles attaches refs to an owner in order. Temp references are promoted
// first; numeric references must name an existing file. The returned map
// holds temp id to formal id for every promoted reference.
func (l *FileLinker) LinkFiles(ctx context.Context, ownerTable string, ownerID int64, role model.FileRole, refs []model.FileReference, actorID *int64) (map[string]int64, error) {
	promoted := make(map[string]int64)
	for i, ref := range refs {
		ref.FileID = strings.TrimSpace(ref.FileID)
		if ref.FileID == "" {
			continue
		}

		var fileID int64
		if _, err := uuid.Parse(ref.FileID); err == nil {
			file, err := l.promote(ctx, ref.FileID, ref.FileName, actorID)
			if err != nil {
				return promoted, err
			}
			fileID = file.ID
			promoted[ref.FileID] = file.ID
		} else {
			id, err := strconv.ParseInt(ref.FileID, 10, 64)
			if err != nil {
				return promoted, common.ErrFileNotFound
			}
			if _, err := fileByID(ctx, l.s.repo, l.tx, id); err != nil {
				return promoted, err
			}
			fileID = id
		}

		link := &model.UploadFileLink{
			FileID:     fileID,
			OwnerTable: ownerTable,
			OwnerID:    ownerID,
			Role:       role,
			SortOrder:  i,
		}
		if err := l.s.repo.CreateLink(ctx, l.tx, link); err != nil {
			return promoted, err
		}
	}
	return promoted, nil
}

// ReplaceLinks drops every link of the role and links refs in their place.
func (l *FileLinker) ReplaceLinks(ctx context.Context, ownerTable string, ownerID int64, role model.FileRole, refs []model.FileReference, actorID *int64) (map[string]int64, error) {
	if _, err := l.s.repo.DeleteLinks(ctx, l.tx, ownerTable, ownerID, &role, nil); err != nil {
		return nil, err
	}
	return l.LinkFiles(ctx, ownerTable, ownerID, role, refs, actorID)
}

func (l *FileLinker) UnlinkFiles(ctx context.Context, ownerTable string, ownerID int64, role model.FileRole, fileIDs []int64) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, nil
	}
	return l.s.repo.DeleteLinks(ctx, l.tx, ownerTable, ownerID, &role, fileIDs)
}

func (l *FileLinker) UnlinkAll(ctx context.Context, ownerTable string, ownerID int64) error {
	_, err := l.s.repo.DeleteLinks(ctx, l.tx, ownerTable, ownerID, nil, nil)
	return err
}

func (s *FileService) ListLinked(ctx context.Context, ownerTable string, ownerID int64, role model.FileRole) ([]model.LinkedFile, error) {
	return s.repo.ListLinked(ctx, ownerTable, ownerID, &role)
}

func (s *FileService) CountLinked(ctx context.Context, ownerTable string, ownerIDs []int64) (map[int64]model.FileCounts, error) {
	if len(ownerIDs) == 0 {
		return map[int64]model.FileCounts{}, nil
	}
	return s.repo.CountLinked(ctx, ownerTable, ownerIDs)
}

// RewriteTempURLs points temp preview URLs in content at the promoted files.
func RewriteTempURLs(content string, promoted map[string]int64) string {
	for tempID, fileID := range promoted {
		content = strings.ReplaceAll(content, TempURL(tempID), repository.DownloadURL(fileID))
	}
	return content
}

// RemoveImageURLs drops img tags whose src is the download URL of one of
// fileIDs.
func RemoveImageURLs(content string, fileIDs []int64) string {
	for _, id := range fileIDs {
		re := regexp.MustCompile(`<img[^>]*src=["']` + regexp.QuoteMeta(repository.DownloadURL(id)) + `["'][^>]*>`)
		content = re.ReplaceAllString(content, "")
	}
	return content
}

func storedName(id, ext string) string {
	if ext == "" {
		return id
	}
	return id + "." + ext
}

func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func detectMimeType(path, ext string) string {
	if ext != "" {
		if t := mime.TypeByExtension("." + ext); t != "" {
			return t
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}
