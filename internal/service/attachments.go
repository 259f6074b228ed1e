package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

// AttachmentStore is the external blob-storage capability: put a blob under a
// logical key and get back a durable URL, or delete a blob by key. Delete is
// idempotent; removing a key that no longer exists succeeds.
type AttachmentStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// IncomingFile is one uploaded file before it becomes an attachment.
type IncomingFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentLifecycleManager enforces the attachment cap, uploads incoming
// files, builds attachment records, and deletes orphaned blobs when a task or
// a document is removed.
type AttachmentLifecycleManager struct {
	store  AttachmentStore
	logger *slog.Logger
	now    func() time.Time // Injectable for testing
}

// NewAttachmentLifecycleManager creates a new AttachmentLifecycleManager.
// If logger is nil, a default logger will be used.
func NewAttachmentLifecycleManager(store AttachmentStore, logger *slog.Logger) *AttachmentLifecycleManager {
	if store == nil {
		panic("attachment store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AttachmentLifecycleManager{
		store:  store,
		logger: logger.With(slog.String("component", "attachment_lifecycle")),
		now:    time.Now,
	}
}

// Attach validates the post-merge attachment count, uploads every incoming
// file, and returns the merged attachment list in input order. The cap is
// checked before any upload: a violation performs no storage call at all.
//
// Uploads run concurrently and are joined before return. If any upload
// fails, blobs already uploaded by this call are deleted best-effort and the
// returned error wraps ErrUploadFailed. The caller's task record must never
// reference a blob that failed to finish uploading.
func (m *AttachmentLifecycleManager) Attach(
	ctx context.Context,
	existing []domain.Attachment,
	files []IncomingFile,
	ownerID uuid.UUID,
) ([]domain.Attachment, error) {
	if len(files) == 0 {
		return existing, nil
	}

	if len(existing)+len(files) > domain.MaxAttachments {
		return nil, fmt.Errorf("%w: %d existing + %d incoming > %d",
			ErrAttachmentLimitExceeded, len(existing), len(files), domain.MaxAttachments)
	}

	// Each goroutine writes only its own index, so no locking is needed.
	// A zero StorageKey afterwards means that upload never completed.
	uploaded := make([]domain.Attachment, len(files))

	p := pool.New().WithErrors().WithContext(ctx)
	for i, file := range files {
		p.Go(func(ctx context.Context) error {
			key := m.storageKey(ownerID, file.Filename)
			url, err := m.store.Put(ctx, key, file.Data, file.ContentType)
			if err != nil {
				return fmt.Errorf("upload %q: %w", file.Filename, err)
			}
			uploaded[i] = domain.Attachment{
				URL:        url,
				Filename:   filepath.Base(file.Filename),
				StorageKey: key,
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		// Compensating cleanup: the blobs that did land must not outlive
		// this failed call.
		var orphans []domain.Attachment
		for _, doc := range uploaded {
			if doc.StorageKey != "" {
				orphans = append(orphans, doc)
			}
		}
		m.Release(ctx, orphans)

		m.logger.Warn("attachment upload failed",
			slog.String("owner_id", ownerID.String()),
			slog.Int("requested", len(files)),
			slog.Int("cleaned_up", len(orphans)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	merged := make([]domain.Attachment, 0, len(existing)+len(uploaded))
	merged = append(merged, existing...)
	merged = append(merged, uploaded...)
	return merged, nil
}

// Release deletes every given attachment's blob from the store, best-effort.
// Deletion errors are logged and swallowed: the task record is the source of
// truth, and the caller's own success path must not be blocked by a
// temporarily unavailable object store.
func (m *AttachmentLifecycleManager) Release(ctx context.Context, docs []domain.Attachment) {
	for _, doc := range docs {
		if err := m.store.Delete(ctx, doc.StorageKey); err != nil {
			m.logger.Warn("failed to delete attachment blob",
				slog.String("storage_key", doc.StorageKey),
				slog.String("filename", doc.Filename),
				slog.String("error", err.Error()))
		}
	}
}

// storageKey builds a blob key namespaced by the owning user, so blobs are
// attributable and collision-free even for concurrent uploads by different
// owners. A random nonce keeps same-millisecond uploads of the same file
// name apart.
func (m *AttachmentLifecycleManager) storageKey(ownerID uuid.UUID, filename string) string {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file.bin"
	}
	name = strings.ReplaceAll(name, " ", "_")

	nonce := uuid.New().String()[:8]
	return fmt.Sprintf("%s/%d_%s_%s", ownerID, m.now().UnixMilli(), nonce, name)
}
