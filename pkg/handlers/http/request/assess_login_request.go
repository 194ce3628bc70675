package request

// Fingerprint mirrors the client-collected device attributes.
type Fingerprint struct {
	UserAgent string `json:"user_agent"`
	Timezone  string `json:"timezone"`
	Language  string `json:"language"`
	Platform  string `json:"platform"`
}

type AssessLoginRequest struct {
	Email       string                 `json:"email"`
	Password    string                 `json:"password"`
	IP          string                 `json:"ip,omitempty"`
	UserAgent   string                 `json:"user_agent,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	Fingerprint *Fingerprint           `json:"fingerprint,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
