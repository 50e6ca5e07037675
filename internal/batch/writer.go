package batch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/temirov/dialsight/internal/fsops"
)

const (
	chunkFileNameFormat  = "results_chunk_%04d.jsonl"
	mergedResultFileName = "results.jsonl"
	filePermissions      = 0o644
)

// ChunkedWriter appends result records and persists them in fixed-size JSONL
// chunk files, so that an interrupted run loses at most one partial chunk.
// It is not safe for concurrent use; the batch runner funnels all results
// through a single writer goroutine.
type ChunkedWriter struct {
	ops        fsops.Ops
	directory  string
	chunkSize  int
	pending    []Result
	chunkCount int
	all        []Result
}

// NewChunkedWriter creates a writer storing chunks under directory.
func NewChunkedWriter(ops fsops.Ops, directory string, chunkSize int) *ChunkedWriter {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &ChunkedWriter{ops: ops, directory: directory, chunkSize: chunkSize}
}

// Append buffers one record, flushing a chunk file when the buffer is full.
func (w *ChunkedWriter) Append(result Result) error {
	w.pending = append(w.pending, result)
	w.all = append(w.all, result)
	if len(w.pending) >= w.chunkSize {
		return w.flushChunk()
	}
	return nil
}

// Flush writes any buffered records as a final, possibly short, chunk.
func (w *ChunkedWriter) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	return w.flushChunk()
}

func (w *ChunkedWriter) flushChunk() error {
	encoded, encodeErr := encodeJSONL(w.pending)
	if encodeErr != nil {
		return encodeErr
	}
	chunkPath := w.ops.FS.Join(w.directory, fmt.Sprintf(chunkFileNameFormat, w.chunkCount))
	if writeErr := w.ops.FS.WriteFile(chunkPath, encoded, filePermissions); writeErr != nil {
		return fmt.Errorf("write chunk %s: %w", chunkPath, writeErr)
	}
	w.chunkCount++
	w.pending = w.pending[:0]
	return nil
}

// Merge consolidates all chunk files into a single results.jsonl and returns
// every record written during the run.
func (w *ChunkedWriter) Merge() ([]Result, error) {
	var merged bytes.Buffer
	for chunkIndex := 0; chunkIndex < w.chunkCount; chunkIndex++ {
		chunkPath := w.ops.FS.Join(w.directory, fmt.Sprintf(chunkFileNameFormat, chunkIndex))
		content, readErr := w.ops.FS.ReadFile(chunkPath)
		if readErr != nil {
			return nil, fmt.Errorf("read chunk %s: %w", chunkPath, readErr)
		}
		merged.Write(content)
	}
	mergedPath := w.ops.FS.Join(w.directory, mergedResultFileName)
	if writeErr := w.ops.FS.WriteFile(mergedPath, merged.Bytes(), filePermissions); writeErr != nil {
		return nil, fmt.Errorf("write %s: %w", mergedPath, writeErr)
	}
	return w.all, nil
}

// Results returns every record appended so far, in arrival order.
func (w *ChunkedWriter) Results() []Result { return w.all }

func encodeJSONL(results []Result) ([]byte, error) {
	var buffer bytes.Buffer
	for _, result := range results {
		line, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return nil, marshalErr
		}
		buffer.Write(line)
		buffer.WriteByte('\n')
	}
	return buffer.Bytes(), nil
}
