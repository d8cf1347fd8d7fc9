package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MinRedeem is the smallest number of coins accepted in one redemption.
	MinRedeem int64 = 100

	// CoinsPerUnit is the fixed exchange rate: 100 coins = 1 currency unit.
	CoinsPerUnit int64 = 100

	RedemptionPending = "pending"
)

type PayoutMethod string

const (
	PayoutUPI     PayoutMethod = "upi"
	PayoutPhonePe PayoutMethod = "phonepe"
	PayoutGPay    PayoutMethod = "gpay"
)

var PayoutMethods = []PayoutMethod{PayoutUPI, PayoutPhonePe, PayoutGPay}

func (m PayoutMethod) Valid() bool {
	for _, known := range PayoutMethods {
		if m == known {
			return true
		}
	}
	return false
}

// Redemption is an immutable payout request. Status stays "pending"; there
// is no confirmation callback that could move it.
type Redemption struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Coins       int64           `json:"coins"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PayoutMethod    `json:"method"`
	Destination string          `json:"paymentId"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CoinsToCash converts coins to currency at the fixed rate, rounded to two
// decimal places.
func CoinsToCash(coins int64) decimal.Decimal {
	return decimal.NewFromInt(coins).Div(decimal.NewFromInt(CoinsPerUnit)).Round(2)
}

// MarshalJSON renders Amount with exactly two decimal places ("1.50").
func (r Redemption) MarshalJSON() ([]byte, error) {
	type plain Redemption
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain: plain(r), Amount: r.Amount.StringFixed(2)})
}

// AmountMinor is the cash value in minor units (paise, cents) for storage.
func (r *Redemption) AmountMinor() int64 {
	return r.Amount.Shift(2).IntPart()
}

// RedeemInput is what a user submits to convert coins into a payout.
type RedeemInput struct {
	Coins       int64        `json:"coins"`
	Method      PayoutMethod `json:"method"`
	Destination string       `json:"paymentId"`
}

// RedeemResult is the created record together with the balance left after
// the debit.
type RedeemResult struct {
	Redemption *Redemption `json:"redemption"`
	Balance    int64       `json:"balance"`
}
