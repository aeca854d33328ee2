package http

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// APIErrorResponse documents the shape of 4xx/5xx bodies.
type APIErrorResponse struct {
	Status  int         `json:"status" example:"404"`
	Message string      `json:"message" example:"Not Found"`
	Data    []*AppError `json:"data,omitempty"`
}

// ValidationError is one failed request constraint.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"validation_error"`
	Field   string                 `json:"field,omitempty" example:"horizon"`
	Message string                 `json:"message,omitempty" example:"horizon must be at most 240"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// HealthStatus is returned by /healthz.
type HealthStatus struct {
	Status string `json:"status" example:"ok"`
	Source string `json:"source,omitempty" example:"csv"`
}
