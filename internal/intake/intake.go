package intake

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"audit-backend/internal/llm"
	"audit-backend/internal/shared/util"
)

// DefaultMaxBytes caps a single file when no limit is configured.
const DefaultMaxBytes int64 = 20 << 20

var (
	ErrIndexOutOfRange = errors.New("attachment index out of range")
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrEmptyFile       = errors.New("file is empty")
)

// Source is one user-selected file awaiting encoding.
type Source struct {
	Name     string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// FileSource reads a file from disk.
func FileSource(path string) Source {
	return Source{
		Name:     filepath.Base(path),
		MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesSource wraps in-memory content.
func BytesSource(name, mimeType string, data []byte) Source {
	return Source{
		Name:     name,
		MimeType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Encode reads src, resolves its MIME type and returns the base64 attachment.
func Encode(src Source, maxBytes int64) (llm.Attachment, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if src.Open == nil {
		return llm.Attachment{}, fmt.Errorf("%s: no content", src.Name)
	}
	rc, err := src.Open()
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("%s: open: %w", src.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("%s: read: %w", src.Name, err)
	}
	if int64(len(data)) > maxBytes {
		return llm.Attachment{}, fmt.Errorf("%s: %w", src.Name, ErrTooLarge)
	}
	if len(data) == 0 {
		return llm.Attachment{}, fmt.Errorf("%s: %w", src.Name, ErrEmptyFile)
	}

	name, err := util.SanitizeFileName(src.Name)
	if err != nil {
		name = "attachment"
	}
	return llm.Attachment{
		Name:     name,
		MimeType: resolveMimeType(src.MimeType, data),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

func resolveMimeType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" && mt != "application/octet-stream" {
		return mt
	}
	sniffed := http.DetectContentType(data)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return sniffed
}

// List is the ordered set of pending attachments for one submission.
type List struct {
	mu       sync.Mutex
	items    []llm.Attachment
	maxBytes int64
}

// NewList returns an empty list with a per-file size cap.
func NewList(maxBytes int64) *List {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &List{maxBytes: maxBytes}
}

// Add encodes every source concurrently and appends each as soon as it finishes, so list order
// follows completion order. It returns once all encodes are done, with the per-file errors joined.
func (l *List) Add(ctx context.Context, sources []Source) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
				mu.Unlock()
				return
			}
			att, err := Encode(src, l.maxBytes)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			l.mu.Lock()
			l.items = append(l.items, att)
			l.mu.Unlock()
		}(src)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Remove deletes the attachment at position i; later items shift down by one.
func (l *List) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return ErrIndexOutOfRange
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return nil
}

// Snapshot returns a copy of the current attachments.
func (l *List) Snapshot() []llm.Attachment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]llm.Attachment, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}
