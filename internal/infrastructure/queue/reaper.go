package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	deleteTimeout  = 30 * time.Second
)

type reapJob struct {
	userID string
	key    string
}

// Reaper deletes replaced CV objects in the background. Jobs are sharded by
// user id so one user's deletions run in order on a single worker.
type Reaper struct {
	workers []chan reapJob
	storage ports.ObjectStorage
	log     zerolog.Logger
	wg      sync.WaitGroup

	// mu guards stopped against the channel close in Stop.
	mu      sync.RWMutex
	stopped bool
}

// NewReaper creates a Reaper with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewReaper(numWorkers int, storage ports.ObjectStorage, log zerolog.Logger) *Reaper {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Reaper{
		workers: make([]chan reapJob, numWorkers),
		storage: storage,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan reapJob, channelBuffer)
	}
	return r
}

// Start launches the workers. They drain their queues and exit once Stop is
// called, or immediately when ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) {
	for i, ch := range r.workers {
		r.wg.Add(1)
		go r.runWorker(ctx, i, ch)
	}
}

// Reap queues key for deletion. It blocks once the shard buffer is full.
// After Stop the key is deleted inline instead.
func (r *Reaper) Reap(userID, key string) {
	r.mu.RLock()
	if !r.stopped {
		r.workers[r.shardIndex(userID)] <- reapJob{userID: userID, key: key}
		r.mu.RUnlock()
		return
	}
	r.mu.RUnlock()

	r.delete(context.Background(), -1, reapJob{userID: userID, key: key})
}

// Stop closes the queues and waits for in-flight deletions. It is safe to
// call more than once.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	for _, ch := range r.workers {
		close(ch)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reaper) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *Reaper) runWorker(ctx context.Context, id int, ch <-chan reapJob) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			r.delete(ctx, id, job)
		}
	}
}

func (r *Reaper) delete(ctx context.Context, worker int, job reapJob) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	if err := r.storage.Delete(ctx, job.key); err != nil {
		r.log.Error().Err(err).
			Str("user_id", job.userID).
			Str("key", job.key).
			Int("worker_id", worker).
			Msg("cv object cleanup failed")
		return
	}
	r.log.Debug().Str("key", job.key).Int("worker_id", worker).Msg("cv object removed")
}
