package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = b
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func TestStore_Put(t *testing.T) {
	s3 := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(s3)
	defer srv.Close()

	endpoint := strings.TrimPrefix(srv.URL, "http://")
	store, err := New(context.Background(), endpoint, "us-east-1", "exports", "key", "secret", false)
	require.NoError(t, err)

	body := []byte(`{"meeting":{}}`)
	url, err := store.Put(context.Background(), "acme/meetings/m1/export.json", "application/json", bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/exports/acme/meetings/m1/export.json", url)

	assert.Equal(t, body, s3.objects["/exports/acme/meetings/m1/export.json"])
	assert.Equal(t, "application/json", s3.types["/exports/acme/meetings/m1/export.json"])
}

func TestStore_PresignedAndCheck(t *testing.T) {
	srv := httptest.NewServer(&fakeS3{objects: map[string][]byte{}, types: map[string]string{}})
	defer srv.Close()

	store, err := New(context.Background(), strings.TrimPrefix(srv.URL, "http://"), "us-east-1", "exports", "key", "secret", false)
	require.NoError(t, err)
	require.NoError(t, store.Check(context.Background()))

	store.PresignTTL = 15 * time.Minute
	url, err := store.Put(context.Background(), "acme/x.json", "", strings.NewReader("{}"), 2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/exports/acme/x.json?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
