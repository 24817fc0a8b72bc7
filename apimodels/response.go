package apimodels

// AnalysisResponse is the body of POST /analyze/. Sentiment holds either a
// label (Positive, Negative, Neutral) or a diagnostic string; failures are
// never signalled through the status code.
type AnalysisResponse struct {
	Sentiment string `json:"sentiment"`
}

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status string `json:"status"`

	// Model currently selected for generation
	Model string `json:"model"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
