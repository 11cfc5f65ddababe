package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"tradesim-go/internal/order"
)

// FillRecorder captures fills for later inspection. The audit trail is
// write-only: nothing in the core ever reads it back.
type FillRecorder interface {
	Record(order.Fill)
}

// NoopRecorder discards fills, used when no audit trail is configured.
type NoopRecorder struct{}

// NewNoopRecorder returns a recorder that drops everything.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

// Record discards the fill.
func (*NoopRecorder) Record(order.Fill) {}

// JSONLRecorder appends fills as JSON lines for later analysis.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single fill to the underlying JSONL file.
func (r *JSONLRecorder) Record(fill order.Fill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(fill)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
