package response

// StandardApiResponse is the envelope every endpoint returns. Status is
// "success" or "error"; StatusCode mirrors the HTTP code so clients reading
// from a queue or log can classify without transport headers. Data carries
// the payload on success, Errors carries binding or domain error detail.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
