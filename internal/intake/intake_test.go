package intake

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEncodeResolvesMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%test\n")
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
	}{
		{name: "declared", declared: "image/png", data: []byte("not really png"), want: "image/png"},
		{name: "declared with params", declared: "application/pdf; charset=binary", data: pdf, want: "application/pdf"},
		{name: "sniffed pdf", declared: "", data: pdf, want: "application/pdf"},
		{name: "octet stream sniffed", declared: "application/octet-stream", data: pdf, want: "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att, err := Encode(BytesSource("doc", tt.declared, tt.data), 0)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if att.MimeType != tt.want {
				t.Fatalf("MimeType = %q, want %q", att.MimeType, tt.want)
			}
			decoded, err := base64.StdEncoding.DecodeString(att.Data)
			if err != nil || string(decoded) != string(tt.data) {
				t.Fatalf("unexpected encoded data")
			}
		})
	}
}

func TestEncodeLimitsAndNames(t *testing.T) {
	if _, err := Encode(BytesSource("big.pdf", "application/pdf", make([]byte, 11)), 10); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := Encode(BytesSource("empty.pdf", "application/pdf", nil), 10); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	att, err := Encode(BytesSource("bank/may.pdf", "application/pdf", []byte("x")), 10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if att.Name != "bank_may.pdf" {
		t.Fatalf("expected sanitized name, got %q", att.Name)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payslip.PNG")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	att, err := Encode(FileSource(path), 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if att.Name != "payslip.PNG" || att.MimeType != "image/png" {
		t.Fatalf("unexpected attachment %+v", att)
	}
}

func TestAddAppendsInCompletionOrder(t *testing.T) {
	list := NewList(0)
	release := make(chan struct{})
	slow := Source{
		Name:     "first-selected.pdf",
		MimeType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			<-release
			return io.NopCloser(strings.NewReader("slow")), nil
		},
	}
	fast := BytesSource("second-selected.pdf", "application/pdf", []byte("fast"))

	go func() {
		for list.Len() < 1 {
			time.Sleep(time.Millisecond)
		}
		close(release)
	}()

	if err := list.Add(context.Background(), []Source{slow, fast}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items := list.Snapshot()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "second-selected.pdf" || items[1].Name != "first-selected.pdf" {
		t.Fatalf("expected completion order, got %s, %s", items[0].Name, items[1].Name)
	}
}

func TestAddJoinsErrorsAndKeepsGoodFiles(t *testing.T) {
	list := NewList(8)
	err := list.Add(context.Background(), []Source{
		BytesSource("ok.png", "image/png", []byte("ok")),
		BytesSource("huge.png", "image/png", make([]byte, 9)),
		{Name: "broken.pdf", Open: func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }},
	})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if !errors.Is(err, ErrTooLarge) || !strings.Contains(err.Error(), "broken.pdf") {
		t.Fatalf("expected both failures reported, got %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("expected good file kept, got %d", list.Len())
	}
}

func TestRemoveShiftsAndKeepsSnapshots(t *testing.T) {
	list := NewList(0)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := list.Add(context.Background(), []Source{BytesSource(name, "application/pdf", []byte(name))}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	submitted := list.Snapshot()

	if err := list.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items := list.Snapshot()
	if len(items) != 2 || items[0].Name != "b.pdf" || items[1].Name != "c.pdf" {
		t.Fatalf("unexpected items after remove %+v", items)
	}
	if len(submitted) != 3 || submitted[0].Name != "a.pdf" || submitted[1].Name != "b.pdf" {
		t.Fatalf("submitted snapshot changed: %+v", submitted)
	}

	for _, i := range []int{-1, 2} {
		if err := list.Remove(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Remove(%d) expected ErrIndexOutOfRange, got %v", i, err)
		}
	}

	list.Clear()
	if list.Len() != 0 {
		t.Fatalf("expected empty list after Clear")
	}
}

func TestAddCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	list := NewList(0)
	err := list.Add(ctx, []Source{BytesSource("a.pdf", "application/pdf", []byte("a"))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if list.Len() != 0 {
		t.Fatalf("expected nothing added")
	}
}
