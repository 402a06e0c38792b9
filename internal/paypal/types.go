package paypal

import "fmt"

// tokenResponse is the OAuth client-credentials response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// senderBatchHeader identifies one payout submission.
type senderBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject,omitempty"`
}

// payoutAmount is the money field of a payout item.
type payoutAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// payoutItem is a single recipient entry in a payout batch.
type payoutItem struct {
	RecipientType string       `json:"recipient_type"`
	Amount        payoutAmount `json:"amount"`
	Receiver      string       `json:"receiver"`
	Note          string       `json:"note,omitempty"`
	SenderItemID  string       `json:"sender_item_id"`
}

// payoutRequest is the body POSTed to /v1/payments/payouts.
type payoutRequest struct {
	SenderBatchHeader senderBatchHeader `json:"sender_batch_header"`
	Items             []payoutItem      `json:"items"`
}

// BatchHeader is the gateway's view of a submitted batch.
type BatchHeader struct {
	PayoutBatchID string `json:"payout_batch_id"`
	BatchStatus   string `json:"batch_status"`
}

// PayoutResult is the synchronous accept response for a payout
// instruction. Acceptance is not proof of final settlement; the
// gateway tracks the asynchronous batch on its own.
type PayoutResult struct {
	BatchHeader BatchHeader `json:"batch_header"`
}

// ErrorDetail is one entry of a gateway error payload.
type ErrorDetail struct {
	Field string `json:"field,omitempty"`
	Issue string `json:"issue,omitempty"`
}

// ErrorResponse is the gateway's error payload.
type ErrorResponse struct {
	Name    string        `json:"name"`
	Message string        `json:"message"`
	DebugID string        `json:"debug_id,omitempty"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// RejectedError is returned when the gateway rejects a payout
// instruction (4xx). Raw carries the error payload verbatim so callers
// can surface it unmodified.
type RejectedError struct {
	StatusCode int
	Raw        string
	Payload    *ErrorResponse
}

func (e *RejectedError) Error() string {
	if e.Payload != nil && e.Payload.Name != "" {
		return fmt.Sprintf("payout rejected (%d): %s: %s", e.StatusCode, e.Payload.Name, e.Payload.Message)
	}
	return fmt.Sprintf("payout rejected (%d): %s", e.StatusCode, e.Raw)
}

// Details returns the gateway error payload as a string for
// pass-through to API callers.
func (e *RejectedError) Details() string {
	return e.Raw
}
