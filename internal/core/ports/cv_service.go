package ports

import (
	"context"
	"io"

	"github.com/jobportal/jobboard-api/internal/core/domain"
)

// ObjectStorage stores CV files.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// ObjectReaper removes objects that are no longer referenced. Implementations
// may work asynchronously.
type ObjectReaper interface {
	Reap(userID, key string)
}

// UploadCVInput carries one multipart upload.
type UploadCVInput struct {
	ActorID     string
	UserID      string
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// CVService manages the single CV attached to an account.
type CVService interface {
	Upload(ctx context.Context, in UploadCVInput) (*domain.CV, error)
	Info(ctx context.Context, actorID, userID string) (*domain.CV, error)
	Delete(ctx context.Context, actorID, userID string) error
}
