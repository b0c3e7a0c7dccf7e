package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type ChallengeResponse struct {
	Nonce     string `json:"nonce"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

type AuthResponse struct {
	Token   string `json:"token"`
	PartyID string `json:"party_id"`
}

type BalanceResponse struct {
	PartyID string `json:"party_id"`
	Balance int64  `json:"balance"`
}

type FeeBalanceResponse struct {
	FeeBalance     int64 `json:"fee_balance"`
	CustodyBalance int64 `json:"custody_balance"`
}

type WithdrawFeesResponse struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}
