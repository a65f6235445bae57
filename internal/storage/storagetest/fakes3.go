// Package storagetest provides an in-process S3-compatible server for tests.
package storagetest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/medconsult/consultation-service/internal/config"
)

// FakeS3 serves path-style bucket and object requests from memory.
type FakeS3 struct {
	*httptest.Server

	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
	types   map[string]string
}

// NewFakeS3 starts a server that is closed when the test ends.
func NewFakeS3(t testing.TB) *FakeS3 {
	t.Helper()
	f := &FakeS3{
		buckets: map[string]bool{},
		objects: map[string][]byte{},
		types:   map[string]string{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Config returns a storage config that points an S3Store at this server.
func (f *FakeS3) Config(bucket string) config.StorageConfig {
	return config.StorageConfig{
		Driver:         "s3",
		S3Endpoint:     f.URL,
		S3Region:       "us-east-1",
		S3Bucket:       bucket,
		S3AccessKey:    "test",
		S3SecretKey:    "test",
		S3UsePathStyle: true,
	}
}

// Put stores an object directly, creating the bucket if needed.
func (f *FakeS3) Put(bucket, key string, body []byte, contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	f.objects[bucket+"/"+key] = body
	f.types[bucket+"/"+key] = contentType
}

// Object returns a stored object and whether it exists.
func (f *FakeS3) Object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[bucket+"/"+key]
	return b, ok
}

func (f *FakeS3) serve(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	f.mu.Lock()
	if key == "" {
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := bucket + "/" + key
	switch r.Method {
	case http.MethodPut:
		f.mu.Unlock()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.Put(bucket, key, body, r.Header.Get("Content-Type"))
		w.Header().Set("ETag", `"fake"`)
	case http.MethodGet:
		body, ok := f.objects[id]
		contentType := f.types[id]
		f.mu.Unlock()
		if !ok {
			writeNoSuchKey(w, key)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(f.objects, id)
		delete(f.types, id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		f.mu.Unlock()
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeNoSuchKey(w http.ResponseWriter, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message>`+
		`<Key>`+key+`</Key></Error>`)
}
