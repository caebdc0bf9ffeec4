package dto

type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
