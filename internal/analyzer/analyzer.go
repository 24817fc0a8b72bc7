package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sozercan/ollama-sentiment/internal/llm"
	"github.com/sozercan/ollama-sentiment/internal/metrics"
	"github.com/sozercan/ollama-sentiment/internal/ollama"
)

// Diagnostic strings returned in place of a label.
const (
	MsgEmptyInput       = "Please provide some text to analyze"
	MsgOllamaNotRunning = "Error: Ollama is not running. Start with 'ollama serve'"
	MsgCannotConnect    = "Error: Cannot connect to Ollama. Run 'ollama serve' in a terminal"
	MsgUnableToAnalyze  = "Error: Unable to analyze sentiment"
	MsgRequestError     = "Error connecting to Ollama API"
	MsgUnexpected       = "Unexpected error occurred"

	msgPullStarted = "Model %s not found. Attempting to download it now. Please try again in a minute."
	msgPullManual  = "Error: Model not found. Run 'ollama pull %s' in a terminal"
)

// Outcome classifies how an analysis ended.
type Outcome string

const (
	OutcomeLabel             Outcome = "label"
	OutcomeFallback          Outcome = "fallback"
	OutcomeEmptyInput        Outcome = "empty_input"
	OutcomeOllamaUnavailable Outcome = "ollama_unavailable"
	OutcomeConnectionRefused Outcome = "connection_refused"
	OutcomeModelNotFound     Outcome = "model_not_found"
	OutcomeRequestError      Outcome = "request_error"
	OutcomeMalformedReply    Outcome = "malformed_reply"
	OutcomeUnexpectedError   Outcome = "unexpected_error"
)

// ModelLister lists the models installed on the model server. The call
// doubles as the liveness probe.
type ModelLister interface {
	Tags(ctx context.Context) ([]ollama.Model, error)
}

// Puller downloads a model, blocking until it is installed.
type Puller interface {
	Pull(ctx context.Context, model string) error
}

type Options struct {
	DefaultModel    string
	Candidates      []string
	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	// AutoPull starts a download when the selected model is missing.
	AutoPull    bool
	PullTimeout time.Duration
}

// Result is the outcome of one Analyze call.
type Result struct {
	// Sentiment is a label or a diagnostic string.
	Sentiment string
	// Model is the model selected for this call.
	Model   string
	Outcome Outcome
	// Pull is set when a model download was started (or already running).
	Pull *PullTask
}

type Analyzer struct {
	models      ModelLister
	llmProvider llm.Provider
	puller      Puller
	opts        Options

	mu       sync.Mutex
	selected string
	pulls    map[string]*PullTask
}

// New returns an analyzer whose selection starts at opts.DefaultModel. A
// nil puller disables automatic downloads.
func New(models ModelLister, llmProvider llm.Provider, puller Puller, opts Options) *Analyzer {
	return &Analyzer{
		models:      models,
		llmProvider: llmProvider,
		puller:      puller,
		opts:        opts,
		selected:    opts.DefaultModel,
		pulls:       make(map[string]*PullTask),
	}
}

// SelectedModel returns the model the next generation call will use unless
// the next probe changes it.
func (a *Analyzer) SelectedModel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// Analyze runs the probe, selection, generation and extraction steps for
// text. Every failure is reported as a diagnostic in the Result.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	res := a.analyze(ctx, text)
	metrics.AnalyzeTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (a *Analyzer) analyze(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Sentiment: MsgEmptyInput, Model: a.SelectedModel(), Outcome: OutcomeEmptyInput}
	}

	slog.Info("Starting analysis", "chars", len(text))

	model, err := a.probeAndSelect(ctx)
	if err != nil {
		slog.Error("Could not check Ollama", "error", err)
		return Result{Sentiment: MsgOllamaNotRunning, Model: model, Outcome: OutcomeOllamaUnavailable}
	}

	slog.Info("Attempting to use model", "model", model, "backend", a.llmProvider.Name())

	genCtx, cancel := context.WithTimeout(ctx, a.opts.GenerateTimeout)
	defer cancel()

	start := time.Now()
	reply, err := a.llmProvider.Generate(genCtx, model, BuildPrompt(text))
	metrics.GenerateDuration.WithLabelValues(a.llmProvider.Name(), model).Observe(time.Since(start).Seconds())
	if err != nil {
		return a.generateFailure(model, err)
	}

	label, ok := ExtractLabel(reply)
	if !ok {
		slog.Warn("No sentiment label in model reply", "model", model, "reply", label)
		return Result{Sentiment: label, Model: model, Outcome: OutcomeFallback}
	}

	slog.Info("Analysis completed", "model", model, "sentiment", label)
	return Result{Sentiment: label, Model: model, Outcome: OutcomeLabel}
}

// probeAndSelect lists the server's models and updates the selection from
// the candidate list. It returns the model to use, and an error only when
// the server could not be reached or its answer could not be read.
func (a *Analyzer) probeAndSelect(ctx context.Context) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, a.opts.ProbeTimeout)
	defer cancel()

	models, err := a.models.Tags(probeCtx)
	if err != nil {
		var apiErr *ollama.APIError
		if errors.As(err, &apiErr) {
			// Reachable but unhappy: keep the previous selection and try anyway.
			slog.Warn("Ollama model listing failed", "status", apiErr.StatusCode, "error", apiErr.Message)
			return a.SelectedModel(), nil
		}
		return a.SelectedModel(), err
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	slog.Info("Available models", "models", names)

	return a.selectFrom(models), nil
}

// selectFrom moves the selection to the first candidate present in models
// and returns the resulting selection.
func (a *Analyzer) selectFrom(models []ollama.Model) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, candidate := range a.opts.Candidates {
		if !ollama.HasModel(models, candidate) {
			continue
		}
		if a.selected != candidate {
			slog.Info("Selected model", "model", candidate, "previous", a.selected)
		}
		a.selected = candidate
		metrics.ModelSelections.WithLabelValues(candidate).Inc()
		break
	}
	return a.selected
}

func (a *Analyzer) generateFailure(model string, err error) Result {
	switch {
	case ollama.IsConnectionRefused(err):
		slog.Error("Failed to connect to Ollama API", "error", err)
		return Result{Sentiment: MsgCannotConnect, Model: model, Outcome: OutcomeConnectionRefused}

	case errors.Is(err, llm.ErrMissingResponse):
		slog.Error("Missing response in API result", "model", model, "error", err)
		return Result{Sentiment: MsgUnableToAnalyze, Model: model, Outcome: OutcomeMalformedReply}

	case ollama.IsModelNotFound(err):
		slog.Error("Request error", "model", model, "error", err)
		return a.modelNotFound(model)

	case isRequestError(err):
		slog.Error("Request error", "model", model, "error", err)
		return Result{Sentiment: MsgRequestError, Model: model, Outcome: OutcomeRequestError}

	default:
		slog.Error("Unexpected error", "model", model, "error", err)
		return Result{Sentiment: MsgUnexpected, Model: model, Outcome: OutcomeUnexpectedError}
	}
}

func (a *Analyzer) modelNotFound(model string) Result {
	res := Result{Model: model, Outcome: OutcomeModelNotFound}

	if !a.opts.AutoPull || a.puller == nil {
		res.Sentiment = fmt.Sprintf(msgPullManual, model)
		return res
	}

	res.Pull = a.startPull(model)
	res.Sentiment = fmt.Sprintf(msgPullStarted, model)
	return res
}

func isRequestError(err error) bool {
	var (
		apiErr *ollama.APIError
		urlErr *url.Error
		netErr net.Error
	)
	return errors.As(err, &apiErr) ||
		errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
