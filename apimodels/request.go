package apimodels

// FormFieldText is the form field carrying the text to analyze.
const FormFieldText = "text"

// AnalysisRequest is the JSON form of an analyze call. Form-encoded bodies
// carry the same value in the "text" field.
type AnalysisRequest struct {
	// Text is the free text to classify
	Text *string `json:"text"`
}
