package escrow

// FeeBPS is the fixed platform fee, in basis points out of 10000. It is
// charged on both legs: the buyer pays amount+fee into custody and the
// seller receives amount-fee on settlement, so the ledger's take on a
// settled trade is 2*Fee(amount).
const (
	FeeBPS         = 500
	bpsDenominator = 10_000
)

// Fee is the single-leg fee. Integer truncating division; the take on odd
// amounts can be one unit short of an exact 10% and that is accepted.
func Fee(amount int64) int64 {
	return amount * FeeBPS / bpsDenominator
}

// BuyerObligation is what the buyer is debited when paying a trade.
func BuyerObligation(amount int64) int64 {
	return amount + Fee(amount)
}

// SellerPayout is what the seller is credited on settlement.
func SellerPayout(amount int64) int64 {
	return amount - Fee(amount)
}

// FeeTake is what the ledger keeps on settlement (both legs).
func FeeTake(amount int64) int64 {
	return 2 * Fee(amount)
}
