package dto

type VerifyChallengeRequest struct {
	PublicKey string `json:"public_key"` // hex ed25519
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"` // hex, over the challenge digest
}

type CreateTradeRequest struct {
	Amount int64 `json:"amount"` // smallest asset unit
}

type ResolveDisputeRequest struct {
	FavorBuyer bool `json:"favor_buyer"`
}

type WithdrawFeesRequest struct {
	To string `json:"to"` // party id; defaults to the caller
}

type MintRequest struct {
	Amount int64 `json:"amount"`
}
