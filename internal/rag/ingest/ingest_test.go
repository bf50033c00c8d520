package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/AITutor/internal/domain/commonModels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"https://go.dev/doc/", nil},
		{"http://example.com", nil},
		{"  https://example.com/a?b=c  ", nil},
		{"", ErrEmptyURL},
		{"   ", ErrEmptyURL},
		{"ftp://x", ErrInvalidURL},
		{"example.com", ErrInvalidURL},
		{"https://", ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ValidateURL(tt.raw)
			if tt.want == nil {
				require.NoError(t, err)
				assert.NotEmpty(t, u.Host)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetDocType(t *testing.T) {
	assert.Equal(t, commonModels.PDF, getDocType("lecture.PDF"))
	assert.Equal(t, commonModels.DOCX, getDocType("essay.docx"))
	assert.Equal(t, commonModels.TXT, getDocType("notes.txt"))
	assert.Equal(t, commonModels.ERR, getDocType("binary.exe"))
	assert.False(t, SupportedDocument("archive.zip"))
	assert.True(t, SupportedDocument("slides.pdf"))
}

func TestExtractDocument_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("goroutines and channels"), 0o600))

	pages, docType, err := ExtractDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, commonModels.TXT, docType)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Content, "goroutines and channels")
}

func TestExtractDocument_Unsupported(t *testing.T) {
	_, _, err := ExtractDocument(context.Background(), "whatever.exe")
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))
}

const articleHTML = `<!DOCTYPE html>
<html><head><title>Concurrency in Go</title></head>
<body>
<nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
<article>
<h1>Concurrency in Go</h1>
<p>Goroutines are lightweight threads managed by the Go runtime. They are cheap to create and a program can run thousands of them at once.</p>
<p>Channels connect goroutines. One goroutine sends a value into a channel and another receives it, which synchronizes the two without explicit locks.</p>
<p>The select statement lets a goroutine wait on several channel operations and proceed with whichever is ready first.</p>
</article>
<footer>Copyright</footer>
</body></html>`

func TestHTTPFetcher_ExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	u, err := ValidateURL(srv.URL + "/post")
	require.NoError(t, err)

	page, err := NewHTTPFetcher(srv.Client()).Fetch(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/post", page.URL)
	assert.Contains(t, page.Text, "Goroutines are lightweight threads")
	assert.Contains(t, page.Text, "select statement")
}

func TestHTTPFetcher_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	u, err := ValidateURL(srv.URL)
	require.NoError(t, err)

	_, err = NewHTTPFetcher(srv.Client()).Fetch(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
