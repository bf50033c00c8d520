package rag_test

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/rag/llm"
)

// MockProvider records every chat request it receives.
type MockProvider struct {
	mu       sync.Mutex
	Requests []llm.ChatRequest
	Reply    string
	Err      error
}

func (m *MockProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockProvider) Last() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Requests[len(m.Requests)-1]
}

// MockEmbedder maps text onto counts of a few marker words.
type MockEmbedder struct {
	OnBatch func(chunks []string) ([][]float32, error)
}

func markerVector(text string) []float32 {
	text = strings.ToLower(text)
	return []float32{
		float32(strings.Count(text, "gopher")) + 0.01,
		float32(strings.Count(text, "python")) + 0.01,
		float32(strings.Count(text, "summarize")) + 0.01,
	}
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return markerVector(query), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatch != nil {
		return m.OnBatch(chunks)
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = markerVector(c)
	}
	return out, nil
}

// MockFetcher serves canned pages.
type MockFetcher struct {
	mu    sync.Mutex
	Pages map[string]ingest.WebPage
	Err   error
	Calls int
}

func (m *MockFetcher) Fetch(ctx context.Context, pageURL *url.URL) (ingest.WebPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return ingest.WebPage{}, m.Err
	}
	page, ok := m.Pages[pageURL.String()]
	if !ok {
		return ingest.WebPage{}, ingest.ErrNoText
	}
	return page, nil
}
