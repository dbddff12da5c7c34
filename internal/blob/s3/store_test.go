package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rpggio/fabtrack/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the GetObject/PutObject subset of the S3 API from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// path-style: /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodPut:
		if f.failPut {
			return respond(http.StatusInternalServerError, nil), nil
		}
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		return respond(http.StatusOK, nil), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, []byte(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)), nil
		}
		return respond(http.StatusOK, body), nil
	}
	return respond(http.StatusNotImplemented, nil), nil
}

func respond(status int, body []byte) *http.Response {
	header := http.Header{}
	if body != nil {
		header.Set("Content-Type", "application/xml")
	}
	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        header,
	}
}

func newFakeStore(t *testing.T, prefix string) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	s, err := New(context.Background(), Config{
		Bucket:          "fabtrack",
		Prefix:          prefix,
		Region:          "us-east-1",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: fake},
	})
	require.NoError(t, err)
	return s, fake
}

func TestStore_SetGet(t *testing.T) {
	s, fake := newFakeStore(t, "")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "boms", []byte(`[]`)))
	require.Equal(t, `[]`, string(fake.objects["boms"]))

	got, err := s.Get(ctx, "boms")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}

func TestStore_Prefix(t *testing.T) {
	s, fake := newFakeStore(t, "/yard-a/")
	require.NoError(t, s.Set(context.Background(), "boms", []byte("x")))
	require.Contains(t, fake.objects, "yard-a/boms")
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newFakeStore(t, "")
	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_PutFailure(t *testing.T) {
	s, fake := newFakeStore(t, "")
	fake.failPut = true
	err := s.Set(context.Background(), "boms", []byte("x"))
	require.Error(t, err)
	require.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}
