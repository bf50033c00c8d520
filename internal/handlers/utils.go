package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/AITutor/internal/adapter"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/session"
)

var errNoSession = errors.New("no session on request")

func WriteJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out, nothing left to tell the client.
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	WriteJsonResponse(w, httpCode, adapter.BadRequest(id, message, httpCode))
}

func writeError(w http.ResponseWriter, id string, err error) {
	code, res := adapter.FromError(id, err)
	WriteJsonResponse(w, code, res)
}

func decodeJSON(body io.ReadCloser, v any) error {
	defer func() {
		if err := body.Close(); err != nil {
			logRH.Warn("Couldn't close the request body", "error", err)
		}
	}()
	return json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(v)
}

func sessionFrom(r *http.Request) (*session.Session, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil, errNoSession
	}
	return s, nil
}

func getTargetDirectory() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(root, config.UploadDirectory)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	return targetDir, nil
}
