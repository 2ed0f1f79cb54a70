package s3source

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/klauspost/compress/zstd"

	"github.com/davidparry/widgets/internal/codec"
	"github.com/davidparry/widgets/internal/codec/gzipcodec"
	"github.com/davidparry/widgets/internal/codec/zstdcodec"
	"github.com/davidparry/widgets/internal/source"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &settings{}
			if err := WithPrefix(tt.input)(s); err != nil {
				t.Fatalf("WithPrefix() error = %v", err)
			}
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestOptions_Invalid(t *testing.T) {
	if err := WithRegion("")(&settings{}); err == nil {
		t.Error("WithRegion(\"\") error = nil")
	}
	if err := WithEndpoint("localhost:9000")(&settings{}); err == nil {
		t.Error("WithEndpoint(no scheme) error = nil")
	}
	if err := WithEndpoint("http://localhost:9000")(&settings{}); err != nil {
		t.Errorf("WithEndpoint() error = %v", err)
	}
}

func TestSource_objectKey(t *testing.T) {
	s := &Source{prefix: "media/v1/"}
	if got := s.objectKey("cats/a.png"); got != "media/v1/cats/a.png" {
		t.Errorf("objectKey() = %q", got)
	}
}

func TestSource_codecFor(t *testing.T) {
	s := &Source{codecs: codec.Set{zstdcodec.New(), gzipcodec.New()}}

	tests := []struct {
		encoding string
		key      string
		want     string
	}{
		{"gzip", "a.png", "gzip"},
		{"", "a.png.zst", "zstd"},
		{"zstd", "a.png.gz", "zstd"},
		{"", "a.png", ""},
	}
	for _, tt := range tests {
		c := s.codecFor(tt.encoding, tt.key)
		got := ""
		if c != nil {
			got = c.Name()
		}
		if got != tt.want {
			t.Errorf("codecFor(%q, %q) = %q, want %q", tt.encoding, tt.key, got, tt.want)
		}
	}
}

// fakeS3 serves path-style GetObject requests.
func fakeS3(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
}

func newTestSource(t *testing.T, endpoint string, opts ...Option) *Source {
	t.Helper()
	opts = append([]Option{
		WithRegion("us-east-1"),
		WithEndpoint(endpoint),
		WithCredentials(aws.AnonymousCredentials{}),
	}, opts...)
	s, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSource_Read(t *testing.T) {
	enc, _ := zstd.NewWriter(nil)
	compressed := enc.EncodeAll([]byte("zstd pixels"), nil)
	enc.Close()

	srv := fakeS3(t, map[string][]byte{
		"/bucket/img/a.png":            []byte("pixels"),
		"/bucket/prefix/img/b.png.zst": compressed,
	})
	defer srv.Close()

	s := newTestSource(t, srv.URL)
	obj, err := s.Read(context.Background(), "s3://bucket/img/a.png")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !bytes.Equal(obj.Data, []byte("pixels")) || obj.Name != "a.png" {
		t.Errorf("Read() = %q (%s)", obj.Data, obj.Name)
	}

	prefixed := newTestSource(t, srv.URL, WithPrefix("prefix"))
	obj, err = prefixed.Read(context.Background(), "s3://bucket/img/b.png.zst")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(obj.Data) != "zstd pixels" || obj.Name != "b.png" {
		t.Errorf("Read() = %q (%s)", obj.Data, obj.Name)
	}
}

func TestSource_ReadNotFound(t *testing.T) {
	srv := fakeS3(t, nil)
	defer srv.Close()

	_, err := newTestSource(t, srv.URL).Read(context.Background(), "s3://bucket/missing.png")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Read() error = %v, want ErrNotFound", err)
	}
}

func TestSource_ReadBadURL(t *testing.T) {
	s := &Source{}
	_, err := s.Read(context.Background(), "gs://bucket/a.png")
	if !errors.Is(err, source.ErrUnsupportedScheme) {
		t.Errorf("Read() error = %v, want ErrUnsupportedScheme", err)
	}
	if _, err := s.Read(context.Background(), "s3://bucket"); err == nil || !strings.Contains(err.Error(), "bucket and a key") {
		t.Errorf("Read() error = %v, want missing key error", err)
	}
}
