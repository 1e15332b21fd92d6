package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func fastClient() *Client {
	return NewClient(WithRetry(3, time.Millisecond), WithTimeout(5*time.Second))
}

func TestClient_GetString(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>song</html>"))
	}))
	defer srv.Close()

	body, err := fastClient().GetString(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>song</html>" {
		t.Errorf("body = %q", body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want default", gotUA)
	}
}

func TestClient_RetriesRetryableStatus(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
}

func TestClient_NotFoundIsPermanent(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := fastClient().Get(context.Background(), srv.URL)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestClient_DownloadFile(t *testing.T) {
	payload := bytes.Repeat([]byte("ID3"), 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "Song.mp3")

	var lastWritten int64
	err := fastClient().DownloadFile(context.Background(), srv.URL+"/song.mp3", dest, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(payload))
	}
	if lastWritten != int64(len(payload)) {
		t.Errorf("progress reported %d bytes", lastWritten)
	}

	missing := filepath.Join(dir, "Missing.mp3")
	if err := fastClient().DownloadFile(context.Background(), srv.URL+"/missing.mp3", missing, nil); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("failed download must not leave a file behind")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only Song.mp3", len(entries))
	}
}

func TestClient_GetFileSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	size, err := fastClient().GetFileSize(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 4096 {
		t.Errorf("size = %d, want 4096", size)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fastClient().Get(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	pw := &ProgressWriter{
		Writer:   &buf,
		Total:    10,
		OnUpdate: func(written, total int64) { calls++ },
	}

	pw.Write([]byte("hello"))
	pw.Write([]byte("world"))

	if pw.Written != 10 || calls != 2 || buf.String() != "helloworld" {
		t.Errorf("Written=%d calls=%d buf=%q", pw.Written, calls, buf.String())
	}
}
