package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/resume"
)

// DefaultBatchSize is the number of files uploaded concurrently.
const DefaultBatchSize = 5

var (
	// ErrNoFiles is returned when a submission has nothing to upload.
	ErrNoFiles = errors.New("please select at least one file")
	// ErrInFlight is returned when a submission is already running.
	ErrInFlight = errors.New("an upload is already in progress")
)

// Uploader sends one file to the parsing endpoint.
type Uploader interface {
	Upload(ctx context.Context, f *files.File) (*resume.Resume, error)
}

// Hooks receive submission progress. Calls are serialized.
type Hooks struct {
	// Progress is called after every finished file, successful or not.
	Progress func(done, total int, filename string)
	// Failed is called for every file whose upload failed.
	Failed func(filename string, err error)
}

// Orchestrator uploads staged files batch by batch.
type Orchestrator struct {
	uploader  Uploader
	batchSize int
	logger    *zap.Logger
	hooks     Hooks

	inFlight atomic.Bool
	hooksMu  sync.Mutex
}

func NewOrchestrator(uploader Uploader, batchSize int, hooks Hooks, logger *zap.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		uploader:  uploader,
		batchSize: batchSize,
		logger:    logger,
		hooks:     hooks,
	}
}

// InFlight reports whether a submission is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Submit uploads the files and returns the parsed résumés in submission order.
// Batches run one after another; files inside a batch are uploaded concurrently.
// Failed files are logged and left out of the result. The returned error is
// non-nil only for an empty submission, a concurrent submission or a done context;
// in the last case the résumés parsed so far are returned alongside it.
func (o *Orchestrator) Submit(ctx context.Context, list []*files.File) ([]*resume.Resume, error) {
	if len(list) == 0 {
		return nil, ErrNoFiles
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer o.inFlight.Store(false)

	logger := o.logger.With(zap.String("submission_id", uuid.NewString()))

	batches := Batches(list, o.batchSize)
	logger.Info("starting upload",
		zap.Int("files", len(list)),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", o.batchSize),
	)

	var (
		results []*resume.Resume
		done    atomic.Int32
	)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			logger.Warn("stopping upload", zap.Int("batch", i+1), zap.Error(err))
			return results, err
		}

		parsed, err := o.runBatch(ctx, logger.With(zap.Int("batch", i+1)), batch, &done, len(list))
		results = append(results, parsed...)
		if err != nil {
			logger.Warn("stopping upload", zap.Int("batch", i+1), zap.Int("parsed", len(results)), zap.Error(err))
			return results, err
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	logger.Info("upload finished",
		zap.Int("files", len(list)),
		zap.Int("parsed", len(results)),
		zap.Int("failed", len(list)-len(results)),
	)

	return results, nil
}

// runBatch uploads one batch concurrently. A failed file is dropped on its own;
// only a done caller context stops the batch, and the files parsed before that
// are still returned.
func (o *Orchestrator) runBatch(ctx context.Context, logger *zap.Logger, batch []*files.File, done *atomic.Int32, total int) ([]*resume.Resume, error) {
	slots := make([]*resume.Resume, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range batch {
		g.Go(func() error {
			parsed, err := o.uploader.Upload(gctx, f)

			o.progress(int(done.Add(1)), total, f.Name)

			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return fmt.Errorf("uploading %s: %w", f.Name, ctxErr)
				}
				logger.Warn("upload failed", zap.String("filename", f.Name), zap.Error(err))
				o.failed(f.Name, err)
				return nil
			}

			logger.Debug("file parsed", zap.String("filename", f.Name))
			parsed.Source = f.Key()
			slots[i] = parsed
			return nil
		})
	}

	err := g.Wait()

	parsed := make([]*resume.Resume, 0, len(batch))
	for _, r := range slots {
		if r != nil {
			parsed = append(parsed, r)
		}
	}
	return parsed, err
}

func (o *Orchestrator) progress(done, total int, filename string) {
	if o.hooks.Progress == nil {
		return
	}
	o.hooksMu.Lock()
	defer o.hooksMu.Unlock()
	o.hooks.Progress(done, total, filename)
}

func (o *Orchestrator) failed(filename string, err error) {
	if o.hooks.Failed == nil {
		return
	}
	o.hooksMu.Lock()
	defer o.hooksMu.Unlock()
	o.hooks.Failed(filename, err)
}

// Batches splits files into consecutive groups of at most size entries.
func Batches(list []*files.File, size int) [][]*files.File {
	if size <= 0 {
		size = DefaultBatchSize
	}

	batches := make([][]*files.File, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		batches = append(batches, list[start:end])
	}
	return batches
}
