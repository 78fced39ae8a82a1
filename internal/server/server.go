package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
	"github.com/qiangli/dataworks/internal/task"
	"github.com/qiangli/dataworks/internal/vfs"
)

// RunLister lists recorded runs, newest first.
type RunLister interface {
	Recent(limit int) ([]*api.Run, error)
}

type Server struct {
	dispatcher *task.Dispatcher
	fs         vfs.FileSystem
	runs       RunLister
}

// New creates the HTTP front end. runs may be nil when no history is kept.
func New(dispatcher *task.Dispatcher, fs vfs.FileSystem, runs RunLister) *Server {
	return &Server{
		dispatcher: dispatcher,
		fs:         fs,
		runs:       runs,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", homeHandler)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /tasks", tasksHandler)
	mux.HandleFunc("GET /runs", s.runsHandler)
	mux.HandleFunc("GET /read", s.readHandler)

	mux.HandleFunc("POST /run-task/{task_id}", s.runTaskHandler)
	mux.HandleFunc("GET /run/{task_id}", s.runTaskHandler)
	mux.HandleFunc("POST /run", s.runTextHandler)

	return logRequests(compress(mux))
}

func compress(h http.Handler) http.Handler {
	wrap, err := gziphandler.GzipHandlerWithOpts(gziphandler.MinSize(0))
	if err != nil {
		return gziphandler.GzipHandler(h)
	}
	return wrap(h)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("DataWorks server listening on %s\n", address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infof("shutting down server\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Infof("%s %s %d %dms\n", r.Method, r.URL.Path, rec.status, time.Since(start).Milliseconds())
	})
}
