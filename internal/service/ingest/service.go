// Package ingest ties the pipeline together: it accepts uploads at the HTTP
// boundary (validate, sanitize, store, enqueue) and processes queued tasks on
// the worker side (fetch, extract, decompose, commit).
package ingest

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codariq/sentidoc/internal/decompose"
	"github.com/codariq/sentidoc/internal/extract"
	"github.com/codariq/sentidoc/internal/models"
	"github.com/codariq/sentidoc/internal/status"
	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
	"github.com/codariq/sentidoc/pkg/storage"
)

// DefaultMaxFileSize caps upload size at 16MB.
const DefaultMaxFileSize = 16 << 20

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Gateway commits a decomposed document tree.
type Gateway interface {
	Commit(ctx context.Context, doc *models.Document) error
}

// Config bounds what Accept lets into the pipeline.
type Config struct {
	MaxFileSize int64
}

// Service is both sides of the queue: Accept is called by HTTP handlers,
// Process by pool workers.
type Service struct {
	queue      *queue.FIFO
	storage    storage.Storage
	gateway    Gateway
	extractor  *extract.Extractor
	decomposer *decompose.Decomposer
	tracker    status.Tracker
	logger     logger.Logger
	cfg        Config
}

// New creates the ingestion service.
func New(q *queue.FIFO, st storage.Storage, gw Gateway, ex *extract.Extractor, dec *decompose.Decomposer, tr status.Tracker, log logger.Logger, cfg Config) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Service{
		queue:      q,
		storage:    st,
		gateway:    gw,
		extractor:  ex,
		decomposer: dec,
		tracker:    tr,
		logger:     log.Named("ingest"),
		cfg:        cfg,
	}
}

// SanitizeFilename strips path components and unsafe characters from a
// client-supplied filename. The result contains only letters, digits, dots,
// underscores and hyphens and never starts with a dot.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	// Drop any path the client sent along, whichever separator it used.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	return name
}

// validate rejects a file before anything is stored or enqueued.
func (s *Service) validate(header *multipart.FileHeader) (string, error) {
	name := SanitizeFilename(header.Filename)
	if name == "" {
		return "", fmt.Errorf("invalid filename: %q", header.Filename)
	}
	if !extract.Supported(name) {
		return "", fmt.Errorf("unsupported file type: %q", name)
	}
	if header.Size > s.cfg.MaxFileSize {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", header.Size, s.cfg.MaxFileSize)
	}
	return name, nil
}

// Accept validates and stores one uploaded file and enqueues its ingestion
// task. It returns the task ID; the caller only learns the file was queued,
// never that it was processed. A full bounded queue surfaces as
// queue.ErrFull.
func (s *Service) Accept(ctx context.Context, header *multipart.FileHeader, ownerID string) (string, error) {
	name, err := s.validate(header)
	if err != nil {
		return "", err
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	// The blob key is prefixed with the task ID so a later upload of the
	// same filename never overwrites a blob a worker may still be reading.
	taskID := uuid.New().String()
	key, err := s.storage.Store(ctx, io.LimitReader(file, s.cfg.MaxFileSize), taskID+"_"+name)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	task := &queue.Task{
		ID:         taskID,
		StoredPath: key,
		Filename:   name,
		OwnerID:    ownerID,
		EnqueuedAt: time.Now(),
	}

	if err := s.queue.Enqueue(ctx, task); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.logger.Warn("failed to remove stored file after enqueue failure",
				logger.String("key", key), logger.Error(derr))
		}
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.setStatus(ctx, &models.TaskStatus{
		TaskID:     task.ID,
		State:      models.StatePending,
		Filename:   name,
		OwnerID:    ownerID,
		EnqueuedAt: task.EnqueuedAt,
	})

	s.logger.Info("task queued",
		logger.String("task_id", task.ID),
		logger.String("filename", name),
		logger.String("owner_id", ownerID))
	return task.ID, nil
}

// AcceptBatch accepts several files in one request. All files are validated
// before any is stored or enqueued, so a bad file rejects the whole batch
// without side effects.
func (s *Service) AcceptBatch(ctx context.Context, headers []*multipart.FileHeader, ownerID string) ([]string, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files in batch")
	}
	for _, h := range headers {
		if _, err := s.validate(h); err != nil {
			return nil, err
		}
	}

	taskIDs := make([]string, len(headers))
	g, gctx := errgroup.WithContext(ctx)
	for i, h := range headers {
		g.Go(func() error {
			id, err := s.Accept(gctx, h, ownerID)
			if err != nil {
				return err
			}
			taskIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return taskIDs, nil
}

// Process runs one queued task to completion: fetch the stored file, extract
// its text, decompose it, commit the tree. Any failure (or panic in a
// collaborator) is recorded against the task and returned; the worker pool
// logs it and moves on.
func (s *Service) Process(ctx context.Context, task *queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		s.finish(ctx, task, err)
	}()

	s.setStatus(ctx, &models.TaskStatus{
		TaskID:     task.ID,
		State:      models.StateRunning,
		Filename:   task.Filename,
		OwnerID:    task.OwnerID,
		EnqueuedAt: task.EnqueuedAt,
	})

	reader, err := s.storage.Get(ctx, task.StoredPath)
	if err != nil {
		return fmt.Errorf("failed to fetch stored file: %w", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to read stored file: %w", err)
	}

	text, err := s.extractor.Extract(ctx, data, task.Filename)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	doc, err := s.decomposer.Decompose(text)
	if err != nil {
		return fmt.Errorf("failed to decompose document: %w", err)
	}
	doc.OwnerID = task.OwnerID
	doc.Filename = task.Filename

	if err := s.gateway.Commit(ctx, doc); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	s.logger.Info("task completed",
		logger.String("task_id", task.ID),
		logger.String("filename", task.Filename),
		logger.Int("paragraphs", len(doc.Paragraphs)))
	return nil
}

// Status reports the recorded lifecycle state of a task.
func (s *Service) Status(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	return s.tracker.Get(ctx, taskID)
}

func (s *Service) finish(ctx context.Context, task *queue.Task, err error) {
	st := &models.TaskStatus{
		TaskID:     task.ID,
		State:      models.StateCompleted,
		Filename:   task.Filename,
		OwnerID:    task.OwnerID,
		EnqueuedAt: task.EnqueuedAt,
		FinishedAt: time.Now(),
	}
	if err != nil {
		st.State = models.StateFailed
		st.Error = err.Error()
	}
	s.setStatus(ctx, st)
}

func (s *Service) setStatus(ctx context.Context, st *models.TaskStatus) {
	if err := s.tracker.Set(ctx, st); err != nil {
		s.logger.Warn("failed to record task status",
			logger.String("task_id", st.TaskID), logger.Error(err))
	}
}
