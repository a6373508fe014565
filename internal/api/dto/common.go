package dto

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps a payload with an optional status message.
type DataResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// TermsRequiredResponse is returned by the terms gate.
type TermsRequiredResponse struct {
	Error           string   `json:"error"`
	MustAcceptTerms bool     `json:"must_accept_terms"`
	Terms           TermsDTO `json:"terms"`
}

type TermsDTO struct {
	Version     string  `json:"version"`
	Label       string  `json:"label"`
	URL         *string `json:"url"`
	HasAccepted bool    `json:"has_accepted"`
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := trim(*s)
	return &v
}
