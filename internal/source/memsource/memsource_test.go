package memsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davidparry/widgets/internal/source"
)

func TestSource_SetAndRead(t *testing.T) {
	s := New()
	data := []byte("pixels")
	s.Set("mem://demo/red.png", data)
	data[0] = 'X'

	obj, err := s.Read(context.Background(), "mem://demo/red.png")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(obj.Data) != "pixels" {
		t.Errorf("Read() = %q, want pixels (copy on Set)", obj.Data)
	}
	if obj.Name != "red.png" || obj.ContentType != "image/png" {
		t.Errorf("Object = %+v", obj)
	}
	if got := s.Reads("mem://demo/red.png"); got != 1 {
		t.Errorf("Reads() = %d, want 1", got)
	}
}

func TestSource_NotFoundAndFail(t *testing.T) {
	s := New()
	if _, err := s.Read(context.Background(), "mem://missing"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}

	boom := errors.New("boom")
	s.Set("mem://x", []byte("x"))
	s.Fail("mem://x", boom)
	if _, err := s.Read(context.Background(), "mem://x"); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want boom", err)
	}
}

func TestSource_LatencyHonorsContext(t *testing.T) {
	s := New(WithLatency(time.Minute))
	s.Set("mem://slow", []byte("x"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := s.Read(ctx, "mem://slow"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Read() error = %v, want DeadlineExceeded", err)
	}
}
