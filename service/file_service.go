package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/session"
	"legalmitra-backend/storage"

	"github.com/google/uuid"
)

const purgeTimeout = 30 * time.Second

// FileService stores and serves the files that belong to a session
type FileService struct {
	storage storage.Storage
	log     *logger.Logger
}

// NewFileService creates a new file service
func NewFileService(store storage.Storage, log *logger.Logger) *FileService {
	if log == nil {
		log = logger.NewNop()
	}
	return &FileService{storage: store, log: log}
}

// Store uploads data and records the file in the session
func (s *FileService) Store(ctx context.Context, sess *session.Session, file *models.File, data []byte) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.MimeType == "" {
		file.MimeType = storage.ContentType(file.Filename)
	}

	if sess.Ended() {
		return session.ErrSessionNotFound
	}

	storagePath, err := s.storage.Upload(ctx, sess.ID, file.ID, file.Filename, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	// the session may have been purged while the upload ran
	if sess.Ended() {
		if err := s.storage.Delete(ctx, storagePath); err != nil {
			s.log.Warn("failed to delete file of ended session", "session_id", sess.ID, "file_id", file.ID, "error", err)
		}
		return session.ErrSessionNotFound
	}

	file.StoragePath = storagePath
	file.Size = int64(len(data))
	sess.Files.Create(file)
	return nil
}

// Open returns a file's metadata and a reader over its content
func (s *FileService) Open(ctx context.Context, sess *session.Session, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := sess.Files.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

// Remove deletes a stored file and its record. The record goes even when
// the object cannot be deleted; the session purge removes it later.
func (s *FileService) Remove(ctx context.Context, sess *session.Session, file *models.File) error {
	sess.Files.Delete(file.ID)
	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("failed to delete %s: %w", file.Filename, err)
	}
	return nil
}

// RemoveAll deletes several files and reports every failure
func (s *FileService) RemoveAll(ctx context.Context, sess *session.Session, files []*models.File) error {
	var errs []error
	for _, f := range files {
		if err := s.Remove(ctx, sess, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Purge deletes every stored file of a session, including objects whose
// record was never written. It is registered as a session eviction hook.
func (s *FileService) Purge(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	files := sess.Files.All()
	if err := s.RemoveAll(ctx, sess, files); err != nil {
		s.log.Warn("failed to delete session files", "session_id", sess.ID, "error", err)
	}

	if err := s.storage.DeleteNamespace(ctx, sess.ID); err != nil {
		s.log.Warn("failed to delete session namespace", "session_id", sess.ID, "error", err)
	}
	s.log.Debug("session files purged", "session_id", sess.ID, "files", len(files))
}
