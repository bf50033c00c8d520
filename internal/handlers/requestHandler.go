package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/AITutor/internal/adapter"
	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/api"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/domain/jobModel"
	"github.com/akolanti/AITutor/internal/job"
	"github.com/akolanti/AITutor/internal/rag"
	"github.com/akolanti/AITutor/internal/rag/ingest"
	"github.com/akolanti/AITutor/internal/rag/prompt"
	"github.com/akolanti/AITutor/internal/session"
)

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         System
// @Success      200
// @Router       /health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// IndexHandler serves the single page UI.
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.ui.ServeHTTP(w, r)
}

// GetSessionHandler godoc
// @Summary      Current session
// @Description  Returns the session settings, the ingested sources and the full chat history.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  api.SessionResponse
// @Router       /session [get]
func (h *Handler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	h.writeSession(w, r, sess)
}

// DeleteSessionHandler godoc
// @Summary      End the session
// @Description  Drops the session's indices and chat history. The next request starts a new session.
// @Tags         Session
// @Success      204
// @Router       /session [delete]
func (h *Handler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	h.sessions.End(sess.ID())
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// PutCredentialHandler godoc
// @Summary      Set the API key
// @Description  Stores the user's LLM API key on the session. A key configured on the server takes precedence.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request  body      api.CredentialRequest  true  "API key"
// @Success      200      {object}  api.SessionResponse
// @Failure      400      {object}  api.JobResponse
// @Router       /session/credential [put]
func (h *Handler) PutCredentialHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	var req api.CredentialRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, sess.ID(), "Bad Request")
		return
	}

	sess.Lock()
	sess.SetUserKey(req.APIKey)
	sess.Unlock()
	h.writeSession(w, r, sess)
}

// PutLevelHandler godoc
// @Summary      Set the education level
// @Description  Unknown levels fall back to Doctorate.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        request  body      api.LevelRequest  true  "Level"
// @Success      200      {object}  api.SessionResponse
// @Failure      400      {object}  api.JobResponse
// @Router       /session/level [put]
func (h *Handler) PutLevelHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	var req api.LevelRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, sess.ID(), "Bad Request")
		return
	}

	sess.Lock()
	sess.SetLevel(prompt.ParseLevel(req.Level))
	sess.Unlock()
	h.writeSession(w, r, sess)
}

// ChatHandler godoc
// @Summary      Send a chat message
// @Description  Retrieves context from the session's document and web indices and asks the model. Runs synchronously.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest   true  "Chat message"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.JobResponse  "Empty message"
// @Failure      401      {object}  api.JobResponse  "No API key"
// @Failure      429      {object}  api.JobResponse  "Provider throttled, can_retry is set"
// @Router       /chat [post]
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	var req api.ChatRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		logRH.WithTrace(r.Context()).Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, sess.ID(), "Bad Request")
		return
	}

	res, err := h.rag.Chat(r.Context(), sess, req.Message)
	if err != nil {
		writeError(w, sess.ID(), err)
		return
	}
	WriteJsonResponse(w, http.StatusOK, adapter.ToChatResponse(res))
}

// PostIngestDocumentHandler godoc
// @Summary      Upload a document
// @Description  Receives a PDF, DOCX, ODT, RTF or TXT file and queues an ingestion job that replaces the session's document index.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The file to upload"
// @Success      202  {object}  api.InitJobResponse
// @Failure      400  {object}  api.JobResponse "Missing file or file too large"
// @Failure      401  {object}  api.JobResponse "No API key"
// @Failure      415  {object}  api.JobResponse "Unsupported file type"
// @Router       /ingest/document [post]
func (h *Handler) PostIngestDocumentHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	log := logRH.WithTrace(r.Context()).With("sessionId", sess.ID())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := filepath.Base(fileMetadata.Filename)
	if !ingest.SupportedDocument(docName) {
		writeError(w, "", fmt.Errorf("%w: %s", ingest.ErrUnsupportedDocument, filepath.Ext(docName)))
		return
	}
	if !hasCredential(sess) {
		writeError(w, "", rag.ErrMissingCredential)
		return
	}

	targetDir, err := getTargetDirectory()
	if err != nil {
		log.Error("Couldn't get target directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), docName))
	if err := saveUpload(tempFilePath, fileReader); err != nil {
		log.Error("Couldn't store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Write error")
		return
	}

	newJob := job.NewIngestJob(r.Context(), sess.ID(), jobModel.JobTypeIngestDocument, jobModel.JobPayload{
		IngestFileName: docName,
		IngestPath:     tempFilePath,
	})
	if err := h.jobs.Enqueue(r.Context(), newJob); err != nil {
		_ = os.Remove(tempFilePath)
		h.queueError(w, err)
		return
	}
	WriteJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.Id))
}

// PostIngestWebHandler godoc
// @Summary      Add a web page
// @Description  Validates the URL and queues a job that fetches, indexes and summarizes the page, replacing the session's web index.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestWebRequest  true  "Page URL"
// @Success      202      {object}  api.InitJobResponse
// @Failure      400      {object}  api.JobResponse  "Empty or malformed URL"
// @Failure      401      {object}  api.JobResponse  "No API key"
// @Router       /ingest/web [post]
func (h *Handler) PostIngestWebHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	var req api.IngestWebRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	pageURL, err := ingest.ValidateURL(req.URL)
	if err != nil {
		writeError(w, "", err)
		return
	}
	if !hasCredential(sess) {
		writeError(w, "", rag.ErrMissingCredential)
		return
	}

	newJob := job.NewIngestJob(r.Context(), sess.ID(), jobModel.JobTypeIngestWeb, jobModel.JobPayload{
		IngestURL: pageURL.String(),
	})
	if err := h.jobs.Enqueue(r.Context(), newJob); err != nil {
		h.queueError(w, err)
		return
	}
	WriteJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.Id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of an ingestion job of this session.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func (h *Handler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	idString := urlParam(r, "id")
	result, isFound := h.jobs.GetJob(r.Context(), idString)
	// jobs of other sessions are invisible
	if !isFound || result.SessionId != sess.ID() {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	WriteJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sess.Lock()
	state := sess.State()
	sess.Unlock()

	history, err := h.messages.GetMessageHistory(r.Context(), sess.ID())
	if err != nil {
		logRH.WithTrace(r.Context()).Error("could not read history", "error", err)
		writeError(w, sess.ID(), err)
		return
	}
	WriteJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(state, history))
}

func (h *Handler) queueError(w http.ResponseWriter, err error) {
	if errors.Is(err, job.ErrQueueFull) {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Too many jobs queued, try again shortly")
		return
	}
	WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not queue job")
}

func hasCredential(sess *session.Session) bool {
	sess.Lock()
	defer sess.Unlock()
	return sess.HasCredential()
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return err
	}
	return dst.Close()
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(utils.GetChiURLParam(r, key))
}
