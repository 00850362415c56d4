package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/canship/internal/chunk"
	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// NoStartIndex leaves the start index to AutoResume or the index base.
const NoStartIndex = -1

// UploadConfig contains configuration for one upload.
type UploadConfig struct {
	Canister string
	Method   string
	Network  string

	ChunkSize int
	IndexBase domain.ChunkIndex

	// Offset is the number of leading file bytes the source dropped.
	// It is only recorded in progress so resumes match the same slice.
	Offset int64

	// StartIndex is an explicit remote index to start at, or NoStartIndex.
	StartIndex int

	// AutoResume starts after the chunks recorded in a matching progress record.
	AutoResume bool

	// EmptyWrite issues one zero-length write for an empty payload, for
	// remote endpoints that create the target on first write.
	EmptyWrite bool
}

// UploadResult describes a finished upload run.
type UploadResult struct {
	Report

	File    string
	Size    int64
	Total   int
	Digest  domain.Digest
	Resumed bool
}

// Uploader loads a payload, picks the start index and drives a Sequencer,
// recording progress after every acknowledged chunk.
type Uploader struct {
	config   UploadConfig
	source   ports.PayloadSource
	writer   ports.ChunkWriter
	progress ports.ProgressRepository
	logger   ports.Logger
}

// NewUploader creates an uploader. progress may be nil to disable
// persistence.
func NewUploader(
	config UploadConfig,
	source ports.PayloadSource,
	writer ports.ChunkWriter,
	progress ports.ProgressRepository,
	logger ports.Logger,
) *Uploader {
	return &Uploader{
		config:   config,
		source:   source,
		writer:   writer,
		progress: progress,
		logger:   loggerOrNoop(logger),
	}
}

// Run performs the upload. A failed chunk returns a *domain.DeliveryError
// and leaves the progress record in place for a later resume.
func (u *Uploader) Run(ctx context.Context) (UploadResult, error) {
	result := UploadResult{File: u.source.Name()}

	payload, err := u.source.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load payload: %w", err)
	}

	seq, err := chunk.Split(payload, u.config.ChunkSize)
	if err != nil {
		return result, err
	}

	result.Size = int64(len(payload))
	result.Total = seq.Total()
	result.Digest = domain.DigestOf(payload)
	if ds, ok := u.writer.(ports.DigestSetter); ok {
		ds.SetDigest(result.Digest.String())
	}

	record := domain.Progress{
		File:      u.source.Name(),
		Size:      result.Size,
		Digest:    result.Digest.String(),
		ChunkSize: u.config.ChunkSize,
		Offset:    u.config.Offset,
		IndexBase: u.config.IndexBase,
		Canister:  u.config.Canister,
		Method:    u.config.Method,
		Network:   u.config.Network,
	}

	start, resumed := u.startIndex(ctx, record)
	result.Resumed = resumed

	u.logger.Info("starting upload",
		ports.String("file", result.File),
		ports.Int64("size", result.Size),
		ports.Int("chunks", result.Total),
		ports.Int("start_index", int(start)),
		ports.Bool("resumed", resumed),
		ports.String("digest", result.Digest.String()),
	)

	if seq.Total() == 0 && u.config.EmptyWrite {
		report, err := u.writeEmpty(ctx)
		result.Report = report
		if err != nil {
			return result, err
		}
		u.clearProgress(ctx)
		return result, nil
	}

	recorder := &progressRecorder{
		ctx:    ctx,
		repo:   u.progress,
		logger: u.logger,
		record: record,
	}
	sequencer := NewSequencer(u.writer, SequencerOptions{
		IndexBase: u.config.IndexBase,
		Logger:    u.logger,
		Observer:  recorder,
	})

	report, err := sequencer.DeliverFrom(ctx, seq, start)
	result.Report = report
	if err != nil {
		return result, err
	}

	u.clearProgress(ctx)

	u.logger.Info("upload complete",
		ports.String("file", result.File),
		ports.Int("chunks_sent", report.Chunks),
		ports.Int64("bytes_sent", report.Bytes),
		ports.Duration("duration", report.Duration),
	)

	return result, nil
}

// startIndex picks where delivery starts: an explicit index wins, then a
// matching progress record when AutoResume is set, then the index base.
func (u *Uploader) startIndex(ctx context.Context, want domain.Progress) (domain.ChunkIndex, bool) {
	base := u.config.IndexBase
	if u.config.StartIndex != NoStartIndex {
		return domain.ChunkIndex(u.config.StartIndex), false
	}
	if !u.config.AutoResume || u.progress == nil {
		return base, false
	}

	stored, err := u.progress.Load(ctx)
	if err != nil {
		u.logger.Warn("failed to load progress, starting from the first chunk", ports.Err(err))
		return base, false
	}
	if stored.Empty() {
		return base, false
	}
	if !stored.Matches(want) {
		u.logger.Warn("ignoring stored progress",
			ports.Err(domain.ErrProgressMismatch),
			ports.String("stored_digest", stored.Digest),
			ports.Int("stored_chunk_size", stored.ChunkSize),
		)
		return base, false
	}

	u.logger.Info("resuming upload",
		ports.Int("acknowledged", stored.Acknowledged),
		ports.Int64("acked_bytes", stored.AckedBytes),
	)
	return stored.NextIndex(), true
}

func (u *Uploader) clearProgress(ctx context.Context) {
	if u.progress == nil {
		return
	}
	if err := u.progress.Clear(ctx); err != nil {
		u.logger.Warn("failed to clear progress", ports.Err(err))
	}
}

func (u *Uploader) writeEmpty(ctx context.Context) (Report, error) {
	index := u.config.IndexBase
	report := Report{State: StateFailed, First: index}
	began := time.Now()

	if err := u.writer.WriteChunk(ctx, index, []byte{}); err != nil {
		report.Duration = time.Since(began)
		return report, &domain.DeliveryError{Index: index, Sent: 1, Err: err}
	}

	u.logger.Info("wrote empty payload", ports.Int("index", int(index)))
	report.State = StateComplete
	report.Last = index
	report.Chunks = 1
	report.Duration = time.Since(began)
	return report, nil
}

// progressRecorder saves progress after each acknowledged chunk.
type progressRecorder struct {
	ctx    context.Context
	repo   ports.ProgressRepository
	logger ports.Logger
	record domain.Progress
}

func (r *progressRecorder) OnChunkDelivered(index domain.ChunkIndex, c domain.Chunk, took time.Duration) {
	r.record.Advance(c)
	if r.repo == nil {
		return
	}
	// a canceled run still records the chunk the remote acknowledged
	ctx := context.WithoutCancel(r.ctx)
	if err := r.repo.Save(ctx, r.record); err != nil {
		r.logger.Error("failed to save progress", ports.Err(err), ports.Int("index", int(index)))
	}
}

func (r *progressRecorder) OnChunkFailed(index domain.ChunkIndex, c domain.Chunk, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.logger.Warn("transfer interrupted", ports.Int("index", int(index)))
	}
}
