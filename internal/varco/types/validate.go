package types

// ValidateRequest is what a zone scanner posts when a QR code is presented.
// The code may arrive in any case; the server normalizes it.
type ValidateRequest struct {
	Code string `json:"code"`
}

// ValidateResponse statuses mirror the scanner firmware's expectations:
// "success" (200), "inactive" (403), "not_found" (404), "error" (500).
type ValidateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
