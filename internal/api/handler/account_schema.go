package handler

import "time"

// apiError is the standard error envelope returned on all 4xx/5xx responses.
// For validation failures Location names the offending field; for internal
// failures it is empty and Message is generic.
type apiError struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// --- Request / Response types ---

// The register request is deliberately NOT bound to a typed struct: the
// validation pipeline classifies the raw decoded body (presence and JSON type
// included), so the handler hands it the map as received. See accountResponse
// for the typed output contract.

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	Account accountResponse `json:"account"`
}

type availabilityRequest struct {
	Username string `param:"username" validate:"required,min=1,max=128"`
}

type availabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
