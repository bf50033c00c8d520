package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/AITutor/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetClient returns the shared outbound client; connections are pooled across web fetches.
func GetClient() *http.Client {
	once.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = config.MaxIdleConns
		transport.MaxIdleConnsPerHost = config.MaxIdleConnsPerHost
		transport.IdleConnTimeout = config.IdleConnTimeout
		client = &http.Client{
			Transport: transport,
			Timeout:   config.WebFetchTimeout,
		}
	})
	return client
}
