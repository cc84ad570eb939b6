package web

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/dataset"
	"github.com/mogaika/matrix3d/history"
	"github.com/mogaika/matrix3d/status"
)

//go:embed viewer
var viewerFiles embed.FS

type HistoryLister interface {
	List(limit int) ([]history.Entry, error)
}

type Server struct {
	Store   *dataset.Store
	Scale   *colorscale.Scale
	Hub     *status.Hub
	History HistoryLister
	Title   string
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/layout", s.HandlerLayout).Methods(http.MethodGet)
	r.HandleFunc("/json/matrix", s.HandlerMatrix).Methods(http.MethodGet)
	r.HandleFunc("/json/history", s.HandlerHistory).Methods(http.MethodGet)
	r.HandleFunc("/chart/bar3d", s.HandlerBar3D).Methods(http.MethodGet)
	r.HandleFunc("/chart/heatmap.png", s.HandlerHeatmap).Methods(http.MethodGet)
	r.HandleFunc("/export/scene.glb", s.HandlerSceneGLB).Methods(http.MethodGet)
	r.HandleFunc("/export/scene.fbx", s.HandlerSceneFBX).Methods(http.MethodGet)
	r.HandleFunc("/upload/matrix", s.HandlerUploadMatrix).Methods(http.MethodPost)
	if s.Hub != nil {
		r.Handle("/ws/status", s.Hub)
	}

	viewer, err := fs.Sub(viewerFiles, "viewer")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(viewer)))

	return handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(r))
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) StartServer(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[web] Starting server %v", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Printf("[web] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.Hub != nil {
		s.Hub.Close()
	}
	return srv.Shutdown(shutdownCtx)
}
