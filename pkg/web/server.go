package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pterm/pterm"
	"github.com/skratchdot/open-golang/open"
	"github.com/tosih/slm-mapper/pkg/compare"
	"github.com/tosih/slm-mapper/pkg/engine"
	"github.com/tosih/slm-mapper/pkg/export"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/reader"
	"github.com/tosih/slm-mapper/pkg/resample"
	"github.com/tosih/slm-mapper/pkg/transform"
)

//go:embed templates/*
var templates embed.FS

// maxUpload bounds the size of an uploaded angle table
const maxUpload = 64 << 20

// preview is the size of the device grid returned with a result
var preview = models.Resolution{Rows: 24, Cols: 48}

type MapResponse struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
	HasInverse  bool   `json:"hasInverse"`
	Active      bool   `json:"active"`
}

type ResultResponse struct {
	ID           string                  `json:"id"`
	Map          string                  `json:"map"`
	Mode         string                  `json:"mode"`
	Input        string                  `json:"input"`
	Output       string                  `json:"output"`
	Reconciled   bool                    `json:"reconciled"`
	DeviceMin    float64                 `json:"deviceMin"`
	DeviceMax    float64                 `json:"deviceMax"`
	Range        *transform.RangeWarning `json:"range,omitempty"`
	Verification *compare.Stats          `json:"verification,omitempty"`
	Grid         [][]float64             `json:"grid,omitempty"`
}

type SaveRequest struct {
	Name       string `json:"name"`
	AutoSuffix bool   `json:"autoSuffix"`
}

type Server struct {
	session *engine.Session
	outDir  string
	port    int
}

// NewServer serves one session. Saved artifacts go to outDir.
func NewServer(session *engine.Session, outDir string, port int) *Server {
	if outDir == "" {
		outDir = models.DefaultOutputsDir
	}
	return &Server{
		session: session,
		outDir:  outDir,
		port:    port,
	}
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/api/maps", s.handleMaps).Methods(http.MethodGet)
	router.HandleFunc("/api/select", s.handleSelect).Methods(http.MethodPost)
	router.HandleFunc("/api/convert", s.handleConvert).Methods(http.MethodPost)
	router.HandleFunc("/api/result", s.handleResult).Methods(http.MethodGet)
	router.HandleFunc("/api/results/{id}/save", s.handleSave).Methods(http.MethodPost)
	return router
}

func (s *Server) Start(openBrowser bool) error {
	addr := fmt.Sprintf(":%d", s.port)
	url := fmt.Sprintf("http://localhost%s", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("SLM Mapper Web Interface")

	pterm.Info.Printf("Serving at %s\n", url)
	pterm.Info.Printf("Artifacts are saved to %s\n", s.outDir)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		server.Shutdown(context.Background())
	}()

	if openBrowser {
		go func() {
			time.Sleep(10 * time.Millisecond)
			if err := open.Run(url); err != nil {
				pterm.Warning.Printf("Could not open a browser: %v\n", err)
			}
		}()
	}

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrShapeMismatch), errors.Is(err, models.ErrNonFinite):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrWriteCollision), errors.Is(err, engine.ErrStaleResult):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		pterm.Error.Printf("Request failed: %v\n", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	active, _, _ := s.session.Selected()
	catalog := s.session.Catalog()

	maps := make([]MapResponse, len(catalog))
	for i, e := range catalog {
		maps[i] = MapResponse{
			Name:        e.Name,
			Mode:        e.Mode,
			Description: e.Description,
			HasInverse:  e.Inverse != "",
			Active:      e.Name == active.Name,
		}
	}
	writeJSON(w, http.StatusOK, maps)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: bad request body: %v", models.ErrConfiguration, err))
		return
	}
	if err := s.session.SelectMap(req.Name); err != nil {
		writeError(w, err)
		return
	}

	entry, mode, _ := s.session.Selected()
	writeJSON(w, http.StatusOK, map[string]string{
		"name": entry.Name,
		"mode": mode.String(),
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	field, err := reader.ReadCSVField(io.LimitReader(r.Body, maxUpload))
	if err != nil {
		// anything wrong with the upload is the client's table
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	result, err := s.session.Convert(field)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := summarize(result, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result := s.session.Last()
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no conversion yet"})
		return
	}

	resp, err := summarize(result, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid result id", models.ErrConfiguration))
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: bad request body: %v", models.ErrConfiguration, err))
		return
	}
	if req.Name == "" || filepath.Base(req.Name) != req.Name || req.Name == "." || req.Name == ".." {
		writeError(w, fmt.Errorf("%w: invalid output name %q", models.ErrConfiguration, req.Name))
		return
	}

	policy := export.Refuse
	if req.AutoSuffix {
		policy = export.AutoSuffix
	}
	path := filepath.Join(s.outDir, export.EnsureCSVExt(req.Name))
	written, err := s.session.SaveResult(id, path, policy)
	if err != nil {
		var collision *export.CollisionError
		if errors.As(err, &collision) && collision.Next != "" {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":      err.Error(),
				"suggestion": filepath.Base(collision.Next),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": written})
}

func summarize(r *engine.Result, withGrid bool) (*ResultResponse, error) {
	min, max := reader.FindMinMax(r.Device)
	resp := &ResultResponse{
		ID:         r.ID.String(),
		Map:        r.Map,
		Mode:       r.Mode.String(),
		Input:      r.Input.String(),
		Output:     models.ShapeOf(r.Device).String(),
		Reconciled: r.Reconciled,
		DeviceMin:  min,
		DeviceMax:  max,
		Range:      r.Range,
	}
	if r.Verification != nil {
		stats := r.Verification.Stats
		resp.Verification = &stats
	}
	if withGrid {
		small, err := resample.Resample(r.Device, preview, resample.Nearest)
		if err != nil {
			return nil, err
		}
		resp.Grid = models.Rows(small)
	}
	return resp, nil
}
