package s3_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazmate/internal/config"
	"hazmate/internal/port"
	"hazmate/internal/storage/s3"
)

func TestS3Client_Upload_PathStyleEndpoint(t *testing.T) {
	var (
		mu          sync.Mutex
		gotMethod   string
		gotPath     string
		gotCT       string
		gotAuthzSet bool
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotMethod, gotPath, gotCT = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		gotAuthzSet = r.Header.Get("Authorization") != ""
		mu.Unlock()
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	storage, err := s3.NewS3Client(context.Background(), &config.ArchiveConfig{
		Bucket:    "hazmat-archive",
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "AKIATEST",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	body := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	out, err := storage.Upload(context.Background(), port.UploadInput{
		Bucket:      "hazmat-archive",
		Key:         "documents/2026/10/19/req-1/document.png",
		Body:        bytes.NewReader(body),
		ContentType: "image/png",
		Size:        int64(len(body)),
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/hazmat-archive/documents/2026/10/19/req-1/document.png", gotPath)
	assert.Equal(t, "image/png", gotCT)
	assert.True(t, gotAuthzSet)
	assert.Equal(t, `"abc123"`, out.ETag)
	assert.Contains(t, out.Location, "/hazmat-archive/documents/2026/10/19/req-1/document.png")
}

func TestS3Client_Upload_ErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
	}))
	defer server.Close()

	storage, err := s3.NewS3Client(context.Background(), &config.ArchiveConfig{
		Region:    "us-east-1",
		Endpoint:  server.URL,
		AccessKey: "AKIATEST",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	_, err = storage.Upload(context.Background(), port.UploadInput{
		Bucket:      "hazmat-archive",
		Key:         "documents/x/result.json",
		Body:        bytes.NewReader([]byte(`{}`)),
		ContentType: "application/json",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 upload hazmat-archive/documents/x/result.json")
	assert.Contains(t, err.Error(), "AccessDenied")
}
