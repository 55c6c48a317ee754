package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

//go:embed templates/index.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	maxImportSize   = 4 << 20
	shutdownTimeout = 5 * time.Second
)

// KeyService - то, что нужно странице от usecase.KeyService
type KeyService interface {
	Generate(ctx context.Context, minutes int) (domain.KeyRecord, error)
	Views(ctx context.Context) ([]domain.KeyView, error)
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (int, error)
	FetchRemote(ctx context.Context) domain.KeysData
	Subscribe() (<-chan domain.KeysChangedEvent, func())
	Now() time.Time
	Location() *time.Location
}

type Server struct {
	svc      KeyService
	logger   *slog.Logger
	page     *template.Template
	upgrader websocket.Upgrader
}

func NewServer(svc KeyService, logger *slog.Logger) (*Server, error) {
	page, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		svc:    svc,
		logger: logger.With("component", "web"),
		page:   page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/keys", s.handleList)
	mux.HandleFunc("POST /api/keys", s.handleGenerate)
	mux.HandleFunc("GET /api/remote", s.handleRemote)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	return mux
}

// Run слушает addr до отмены ctx
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type durationOption struct {
	Minutes int
	Text    string
}

type pageData struct {
	Durations []durationOption
	Keys      []domain.KeyView
	EmptyText string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Views(r.Context())
	if err != nil {
		s.fail(w, "failed to load keys", err)
		return
	}

	data := pageData{Keys: views, EmptyText: domain.EmptyListText}
	for _, d := range domain.Durations {
		data.Durations = append(data.Durations, durationOption{Minutes: d, Text: domain.DurationText(d)})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.fail(w, "failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Views(r.Context())
	if err != nil {
		s.fail(w, "failed to load keys", err)
		return
	}
	writeJSON(w, http.StatusOK, keysMessage{Type: "keys", Keys: views})
}

type generateRequest struct {
	Duration int `json:"duration"`
}

type generateResponse struct {
	domain.KeyRecord
	DurationText string `json:"durationText"`
	CreatedText  string `json:"createdText"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.svc.Generate(r.Context(), req.Duration)
	if errors.Is(err, domain.ErrInvalidDuration) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.fail(w, "failed to generate key", err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		KeyRecord:    rec,
		DurationText: domain.DurationText(rec.Duration),
		CreatedText:  domain.FormatDate(rec.CreatedAt, s.svc.Location()),
	})
}

func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.FetchRemote(r.Context()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.Export(r.Context(), &buf); err != nil {
		s.fail(w, "failed to export keys", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="keys.json"`)
	buf.WriteTo(w)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportSize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "import is too large")
		return
	}
	if errors.Is(err, domain.ErrInvalidPayload) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.fail(w, "failed to import keys", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
