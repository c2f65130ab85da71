package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const cvKeyPrefix = "cvs/"

// CVService keeps one CV per account: metadata on the user document, bytes in
// object storage.
type CVService struct {
	users   ports.UserRepository
	storage ports.ObjectStorage
	reaper  ports.ObjectReaper
	clock   ports.Clock
	log     zerolog.Logger
}

// NewCVService wires the CV use-cases. A nil reaper makes replaced files get
// deleted inline.
func NewCVService(users ports.UserRepository, storage ports.ObjectStorage, reaper ports.ObjectReaper, clock ports.Clock, log zerolog.Logger) *CVService {
	if clock == nil {
		clock = SystemClock()
	}
	return &CVService{
		users:   users,
		storage: storage,
		reaper:  reaper,
		clock:   clock,
		log:     log,
	}
}

func (s *CVService) Upload(ctx context.Context, in ports.UploadCVInput) (*domain.CV, error) {
	if in.UserID == "" || in.Body == nil {
		return nil, fmt.Errorf("%w: file and userId are required", domain.ErrInvalidInput)
	}
	if in.ActorID != in.UserID {
		return nil, domain.ErrForbidden
	}
	ext, ok := domain.CVExtension(in.FileName)
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if in.Size > domain.MaxCVSize {
		return nil, domain.ErrFileTooLarge
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	key := fmt.Sprintf("%scv-%s-%d-%s%s", cvKeyPrefix, in.UserID, now.UnixMilli(), uuid.NewString(), ext)
	if err := s.storage.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("upload cv: store object: %w", err)
	}

	cv := &domain.CV{
		FileName:        in.FileName,
		StorageLocation: key,
		UploadDate:      now,
		SizeBytes:       in.Size,
		MIMEType:        in.ContentType,
	}
	if err := s.users.SetCV(ctx, in.UserID, cv); err != nil {
		s.discard(in.UserID, key)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("upload cv: %w", err)
	}

	if user.CV != nil && user.CV.StorageLocation != "" {
		s.discard(in.UserID, user.CV.StorageLocation)
	}

	s.log.Info().Str("user_id", in.UserID).Str("key", key).Int64("size", in.Size).Msg("cv uploaded")
	return cv, nil
}

func (s *CVService) Info(ctx context.Context, actorID, userID string) (*domain.CV, error) {
	user, err := s.authorize(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	if user.CV == nil {
		return nil, domain.ErrCVNotFound
	}
	return user.CV, nil
}

// Delete clears the CV metadata. A storage failure is logged, not returned,
// since the record is already gone.
func (s *CVService) Delete(ctx context.Context, actorID, userID string) error {
	user, err := s.authorize(ctx, actorID, userID)
	if err != nil {
		return err
	}
	if user.CV == nil {
		return domain.ErrCVNotFound
	}

	if err := s.users.SetCV(ctx, userID, nil); err != nil {
		return fmt.Errorf("delete cv: %w", err)
	}

	if err := s.storage.Delete(ctx, user.CV.StorageLocation); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("key", user.CV.StorageLocation).Msg("failed to delete cv object")
	}

	s.log.Info().Str("user_id", userID).Str("actor_id", actorID).Msg("cv deleted")
	return nil
}

// authorize loads the target account and checks that actorID owns it or is an
// admin.
func (s *CVService) authorize(ctx context.Context, actorID, userID string) (*domain.User, error) {
	if actorID != userID {
		actor, err := s.users.FindByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrForbidden
			}
			return nil, err
		}
		if !actor.IsAdmin() {
			return nil, domain.ErrForbidden
		}
	}
	return s.users.FindByID(ctx, userID)
}

func (s *CVService) discard(userID, key string) {
	if s.reaper != nil {
		s.reaper.Reap(userID, key)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("key", key).Msg("failed to delete cv object")
	}
}
