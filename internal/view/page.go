package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sozercan/ollama-sentiment/internal/config"
	"github.com/sozercan/ollama-sentiment/internal/middleware"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Examples are the canned inputs offered by the example picker.
var Examples = map[string]string{
	"positive": "I love this product! It's amazing and exceeded all my expectations.",
	"negative": "This is the worst experience I've ever had. Terrible customer service.",
	"neutral":  "The weather today is neither good nor bad, just average.",
}

// Status check selectors accepted by GET /status.
const (
	CheckBackend = "backend"
	CheckOllama  = "ollama"
	CheckAll     = "all"
)

type pageData struct {
	Title        string
	DisplayModel string
	Banner       Message
	Example      string
	Text         string
	Result       *Message
	Backend      *Message
	Ollama       []Message
}

// Page serves the browser front-end.
type Page struct {
	cfg    config.ClientConfig
	server *http.Server
	router *chi.Mux
	client *Client
}

func NewPage(cfg config.ClientConfig, client *Client) *Page {
	p := &Page{
		cfg:    cfg,
		router: chi.NewRouter(),
		client: client,
	}

	p.setupRoutes()

	p.server = &http.Server{
		Addr:    cfg.Addr(),
		Handler: p.router,
		// Analyze waits on the backend for up to cfg.Timeout.
		WriteTimeout: cfg.Timeout + 5*time.Second,
	}

	return p
}

func (p *Page) setupRoutes() {
	p.router.Use(chimiddleware.RequestID)
	p.router.Use(middleware.Logging("view"))
	p.router.Use(chimiddleware.Recoverer)

	p.router.Get("/", p.handleIndex)
	p.router.Post("/analyze", p.handleAnalyze)
	p.router.Get("/status", p.handleStatus)
	p.router.Handle("/metrics", promhttp.Handler())
}

// Handler exposes the routed handler, mainly for tests.
func (p *Page) Handler() http.Handler {
	return p.router
}

func (p *Page) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := p.newPageData(r)
	data.Text = Examples[data.Example]
	p.render(w, data)
}

func (p *Page) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	slog.Info("Handling view analyze request")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := p.newPageData(r)
	data.Text = r.PostFormValue("text")

	result := p.client.Analyze(r.Context(), data.Text)
	data.Result = &result
	p.render(w, data)
}

func (p *Page) handleStatus(w http.ResponseWriter, r *http.Request) {
	check := r.URL.Query().Get("check")
	if check == "" {
		check = CheckAll
	}
	if check != CheckBackend && check != CheckOllama && check != CheckAll {
		http.Error(w, fmt.Sprintf("unknown check %q", check), http.StatusBadRequest)
		return
	}

	data := p.newPageData(r)
	if check == CheckBackend || check == CheckAll {
		ping := p.client.PingBackend(r.Context())
		data.Backend = &ping
	}
	if check == CheckOllama || check == CheckAll {
		data.Ollama = p.client.CheckOllama(r.Context())
	}
	p.render(w, data)
}

// newPageData fills the parts every render shares, including the backend
// banner, which is checked on every page load.
func (p *Page) newPageData(r *http.Request) *pageData {
	model := p.client.DisplayModel()
	return &pageData{
		Title:        fmt.Sprintf("Sentiment Analyzer (%s)", capitalize(model)),
		DisplayModel: model,
		Banner:       p.client.CheckBackend(r.Context()),
		Example:      r.FormValue("example"),
	}
}

func (p *Page) render(w http.ResponseWriter, data *pageData) {
	var buf strings.Builder
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

func (p *Page) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting view", "address", p.server.Addr, "backend", p.cfg.BackendURL)
		serverErrors <- p.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("view error: %w", err)

	case sig := <-shutdown:
		slog.Info("Starting shutdown", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
