package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
	"github.com/qiangli/dataworks/internal/task"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v\n", err)
	}
}

func writeEnvelope(w http.ResponseWriter, env *api.Envelope) {
	writeJSON(w, env.HTTPStatus(), env)
}

func writeError(w http.ResponseWriter, err error) {
	writeEnvelope(w, api.Failure(err))
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "DataWorks Automation API is running",
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func tasksHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, task.Tasks())
}

func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusOK, []*api.Run{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, api.NewBadRequestError("invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.runs.Recent(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

type runRequest struct {
	Arg  string `json:"arg"`
	Task string `json:"task"`
}

// decodeBody reads an optional JSON body. An empty body is not an error.
func decodeBody(r *http.Request) (*runRequest, error) {
	var req runRequest
	if r.Body == nil {
		return &req, nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, api.Wrap(api.KindBadRequest, err, "invalid request body")
	}
	return &req, nil
}

func (s *Server) runTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("task_id")
	arg := r.URL.Query().Get("arg")
	if arg == "" && r.Method == http.MethodPost {
		req, err := decodeBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		arg = req.Arg
	}
	writeEnvelope(w, s.dispatcher.RunID(r.Context(), id, arg))
}

func (s *Server) runTextHandler(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("task")
	if text == "" {
		req, err := decodeBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		text = req.Task
	}
	writeEnvelope(w, s.dispatcher.RunText(r.Context(), text))
}

// readHandler returns a file's content, or the listing of a directory.
func (s *Server) readHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	info, err := s.fs.GetFileInfo(path)
	if err != nil {
		writeError(w, err)
		return
	}
	if info.IsDirectory {
		entries, err := s.fs.ListDirectory(path)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
		return
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
