package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoinsToCash(t *testing.T) {
	tests := []struct {
		coins int64
		want  string
	}{
		{coins: 100, want: "1.00"},
		{coins: 150, want: "1.50"},
		{coins: 199, want: "1.99"},
		{coins: 12345, want: "123.45"},
		{coins: 0, want: "0.00"},
	}

	for _, test := range tests {
		got := CoinsToCash(test.coins)
		if got.StringFixed(2) != test.want {
			t.Errorf("CoinsToCash(%d) = %s, want %s", test.coins, got.StringFixed(2), test.want)
		}
		r := Redemption{Amount: got}
		if r.AmountMinor() != test.coins {
			t.Errorf("AmountMinor() = %d, want %d", r.AmountMinor(), test.coins)
		}
	}
}

func TestPayoutMethodValid(t *testing.T) {
	for _, m := range PayoutMethods {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if PayoutMethod("paypal").Valid() || PayoutMethod("").Valid() {
		t.Error("unknown methods should be invalid")
	}
}

// Requirement: amounts are serialised as strings with two decimal places.
func TestRedemption_MarshalJSON_FixedAmount(t *testing.T) {
	tests := []struct {
		coins int64
		want  string
	}{
		{coins: 150, want: "1.50"},
		{coins: 100, want: "1.00"},
		{coins: 12345, want: "123.45"},
	}

	for _, test := range tests {
		// Arrange
		r := &Redemption{ID: "r1", Coins: test.coins, Amount: CoinsToCash(test.coins), Method: PayoutUPI, Status: RedemptionPending}

		// Act
		raw, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}

		// Assert
		if fields["amount"] != test.want {
			t.Errorf("amount = %v, want %s", fields["amount"], test.want)
		}
		if fields["paymentId"] == nil || fields["coins"] != float64(test.coins) {
			t.Errorf("other fields lost: %s", raw)
		}

		var back Redemption
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if !back.Amount.Equal(decimal.RequireFromString(test.want)) {
			t.Errorf("decoded amount = %s, want %s", back.Amount, test.want)
		}
	}
}
