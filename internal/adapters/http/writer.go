package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"

	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// Headers sent with every chunk.
const (
	HeaderChunkIndex = "X-Canship-Chunk-Index"
	HeaderUpload     = "X-Canship-Upload"
	HeaderDigest     = "X-Canship-Digest"
	HeaderAgentOS    = "X-Canship-OSArch"
)

// UploadMetadata identifies the upload in request headers.
type UploadMetadata struct {
	// Endpoint is the URL chunks are POSTed to.
	Endpoint string

	// AuthKey is sent as a bearer token when set.
	AuthKey string

	// Name is the uploaded file's name.
	Name string

	// Digest is the payload digest, letting the server reject chunks of a
	// different payload under the same name.
	Digest string
}

// ChunkWriter implements ports.ChunkWriter by POSTing each chunk.
type ChunkWriter struct {
	client   ports.HTTPClient
	logger   ports.Logger
	metadata UploadMetadata
}

// NewChunkWriter creates a new HTTP chunk writer.
func NewChunkWriter(client ports.HTTPClient, metadata UploadMetadata, logger ports.Logger) *ChunkWriter {
	return &ChunkWriter{
		client:   client,
		logger:   logger,
		metadata: metadata,
	}
}

// SetDigest sets the payload digest once it is known.
func (w *ChunkWriter) SetDigest(digest string) {
	w.metadata.Digest = digest
}

// WriteChunk sends one chunk and waits for a 2xx reply.
func (w *ChunkWriter) WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.metadata.Endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(HeaderChunkIndex, strconv.Itoa(int(index)))
	req.Header.Set(HeaderUpload, w.metadata.Name)
	req.Header.Set(HeaderAgentOS, runtime.GOOS+"/"+runtime.GOARCH)
	if w.metadata.Digest != "" {
		req.Header.Set(HeaderDigest, w.metadata.Digest)
	}
	if w.metadata.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.metadata.AuthKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send chunk %d: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("server returned %d for chunk %d: %s", resp.StatusCode, index, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
