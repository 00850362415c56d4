package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bft-labs/canship/internal/domain"
)

func testUploadConfig() UploadConfig {
	return UploadConfig{
		Canister:   "backend",
		Method:     "upload_chunk",
		ChunkSize:  4096,
		IndexBase:  domain.IndexBaseOne,
		StartIndex: NoStartIndex,
	}
}

func TestUploader_Run(t *testing.T) {
	payload := randomPayload(10000)
	src := &memorySource{name: "model.bin", payload: payload}
	w := &recordingWriter{}
	progress := &memoryProgress{}

	u := NewUploader(testUploadConfig(), src, w, progress, &mockLogger{})
	result, err := u.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Total != 3 || result.Size != 10000 || result.Chunks != 3 {
		t.Errorf("result = %+v, want 3 chunks / 10000 bytes", result)
	}
	if result.Digest != domain.DigestOf(payload) {
		t.Error("digest mismatch")
	}
	if !bytes.Equal(w.joined(), payload) {
		t.Error("remote reconstruction differs from payload")
	}
	if len(progress.saves) != 3 {
		t.Errorf("progress saved %d times, want 3", len(progress.saves))
	}
	if last := progress.saves[len(progress.saves)-1]; last.Acknowledged != 3 || last.AckedBytes != 10000 {
		t.Errorf("last progress = %+v, want 3 chunks / 10000 bytes", last)
	}
	if !progress.cleared {
		t.Error("progress not cleared after completion")
	}
}

func TestUploader_Run_FailureKeepsProgress(t *testing.T) {
	payload := randomPayload(10000)
	src := &memorySource{name: "model.bin", payload: payload}
	w := &recordingWriter{failOn: map[int]error{2: errRejected}}
	progress := &memoryProgress{}

	u := NewUploader(testUploadConfig(), src, w, progress, &mockLogger{})
	_, err := u.Run(context.Background())

	var derr *domain.DeliveryError
	if !errors.As(err, &derr) || derr.Index != 2 {
		t.Fatalf("error = %v, want DeliveryError at index 2", err)
	}
	if progress.cleared {
		t.Error("progress cleared after failure")
	}
	if progress.stored.Acknowledged != 1 || progress.stored.AckedBytes != 4096 {
		t.Errorf("stored progress = %+v, want 1 chunk / 4096 bytes", progress.stored)
	}
	if progress.stored.NextIndex() != derr.ResumeIndex() {
		t.Errorf("NextIndex() = %d, want %d", progress.stored.NextIndex(), derr.ResumeIndex())
	}
}

func TestUploader_Run_AutoResume(t *testing.T) {
	payload := randomPayload(10000)
	src := &memorySource{name: "model.bin", payload: payload}
	progress := &memoryProgress{}

	failing := &recordingWriter{failOn: map[int]error{2: errRejected}}
	if _, err := NewUploader(testUploadConfig(), src, failing, progress, &mockLogger{}).Run(context.Background()); err == nil {
		t.Fatal("first run should fail")
	}

	cfg := testUploadConfig()
	cfg.AutoResume = true
	w := &recordingWriter{}
	result, err := NewUploader(cfg, src, w, progress, &mockLogger{}).Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run() error = %v", err)
	}

	if !result.Resumed || result.First != 2 {
		t.Errorf("Resumed = %v First = %d, want true / 2", result.Resumed, result.First)
	}
	if got, want := w.indices(), []domain.ChunkIndex{2, 3}; !equalIndices(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
	if !progress.cleared {
		t.Error("progress not cleared after resumed completion")
	}
}

func TestUploader_Run_AutoResumeIgnoresMismatch(t *testing.T) {
	payload := randomPayload(10000)
	progress := &memoryProgress{stored: domain.Progress{
		Digest:       domain.DigestOf([]byte("another file")).String(),
		Size:         10000,
		ChunkSize:    4096,
		IndexBase:    domain.IndexBaseOne,
		Canister:     "backend",
		Method:       "upload_chunk",
		Acknowledged: 2,
		AckedBytes:   8192,
	}}

	cfg := testUploadConfig()
	cfg.AutoResume = true
	w := &recordingWriter{}
	result, err := NewUploader(cfg, &memorySource{name: "model.bin", payload: payload}, w, progress, &mockLogger{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Resumed {
		t.Error("resumed from a progress record of another payload")
	}
	if got, want := w.indices(), []domain.ChunkIndex{1, 2, 3}; !equalIndices(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

func TestUploader_Run_StartIndex(t *testing.T) {
	payload := randomPayload(10000)

	cfg := testUploadConfig()
	cfg.StartIndex = 3
	w := &recordingWriter{}
	if _, err := NewUploader(cfg, &memorySource{name: "f", payload: payload}, w, nil, &mockLogger{}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, want := w.indices(), []domain.ChunkIndex{3}; !equalIndices(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}

	cfg.StartIndex = 9
	_, err := NewUploader(cfg, &memorySource{name: "f", payload: payload}, &recordingWriter{}, nil, &mockLogger{}).Run(context.Background())
	if !errors.Is(err, domain.ErrInvalidResumeIndex) {
		t.Errorf("error = %v, want ErrInvalidResumeIndex", err)
	}
}

func TestUploader_Run_EmptyPayload(t *testing.T) {
	tests := []struct {
		name       string
		emptyWrite bool
		wantCalls  int
	}{
		{"no write", false, 0},
		{"explicit empty write", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testUploadConfig()
			cfg.EmptyWrite = tt.emptyWrite
			w := &recordingWriter{}
			progress := &memoryProgress{}

			result, err := NewUploader(cfg, &memorySource{name: "empty"}, w, progress, &mockLogger{}).Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(w.calls) != tt.wantCalls {
				t.Errorf("calls = %d, want %d", len(w.calls), tt.wantCalls)
			}
			if tt.wantCalls == 1 && (w.calls[0].index != 1 || len(w.calls[0].data) != 0) {
				t.Errorf("empty write = %+v, want index 1 with no data", w.calls[0])
			}
			if result.State != StateComplete {
				t.Errorf("State = %v, want Complete", result.State)
			}
			if !progress.cleared {
				t.Error("progress not cleared after completion")
			}
		})
	}
}

func TestUploader_Run_Errors(t *testing.T) {
	loadErr := errors.New("no such file")
	_, err := NewUploader(testUploadConfig(), &memorySource{err: loadErr}, &recordingWriter{}, nil, &mockLogger{}).Run(context.Background())
	if !errors.Is(err, loadErr) {
		t.Errorf("error = %v, want load error", err)
	}

	cfg := testUploadConfig()
	cfg.ChunkSize = 0
	w := &recordingWriter{}
	_, err = NewUploader(cfg, &memorySource{payload: []byte("x")}, w, nil, &mockLogger{}).Run(context.Background())
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
	if len(w.calls) != 0 {
		t.Errorf("calls = %d, want 0", len(w.calls))
	}
}

type digestWriter struct {
	recordingWriter
	digest string
}

func (w *digestWriter) SetDigest(digest string) { w.digest = digest }

func TestUploader_Run_SetsDigest(t *testing.T) {
	payload := randomPayload(5000)
	w := &digestWriter{}

	u := NewUploader(testUploadConfig(), &memorySource{name: "a.bin", payload: payload}, w, nil, &mockLogger{})
	if _, err := u.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := domain.DigestOf(payload).String(); w.digest != want {
		t.Errorf("digest = %q, want %q", w.digest, want)
	}
}

func TestUploader_Run_NilLogger(t *testing.T) {
	payload := randomPayload(5000)
	w := &recordingWriter{failOn: map[int]error{2: errRejected}}

	cfg := testUploadConfig()
	cfg.AutoResume = true
	_, err := NewUploader(cfg, &memorySource{name: "a.bin", payload: payload}, NewRetryWriter(w, 0, nil), &memoryProgress{}, nil).Run(context.Background())
	if !errors.Is(err, errRejected) {
		t.Errorf("error = %v, want rejection", err)
	}
}
