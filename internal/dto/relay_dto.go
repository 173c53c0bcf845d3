package dto

// RelayRequest carries what the handler extracted from one HTTP request.
type RelayRequest struct {
	ContentType string
	Body        []byte
	TestQuery   string
}

// RelayResponse is the JSON body returned for every relayed submission.
type RelayResponse struct {
	OK          bool   `json:"ok"`
	Test        bool   `json:"test"`
	ClientID    string `json:"clientId,omitempty"`
	ClientError string `json:"clientError,omitempty"`
	AdminID     string `json:"adminId,omitempty"`
	AdminError  string `json:"adminError,omitempty"`
}

// ErrorResponse is returned when a request is rejected before dispatch.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Test  bool   `json:"test"`
	Error string `json:"error"`
}
