package entity

import "math"

type EntryPoint string

const (
	EntryPointPublicCheckout EntryPoint = "public-checkout"
	EntryPointDonationHub    EntryPoint = "donation-hub"
	EntryPointCreateDonation EntryPoint = "create-donation"
)

// DonationIntent is the donor's request before any server-side order exists.
// Amount is expressed in major currency units.
type DonationIntent struct {
	Amount       float64
	Currency     string
	EventID      *string
	DonorName    string
	DonorMobile  string
	DonorEmail   string
	DonorAddress string
	DonorPAN     string
	IsAnonymous  bool
	ShareCode    *string
}

// AmountMinor converts Amount to minor units (paise).
func (i *DonationIntent) AmountMinor() int64 {
	if i == nil || math.IsNaN(i.Amount) || math.IsInf(i.Amount, 0) {
		return 0
	}
	return int64(math.Round(i.Amount * 100))
}

type PaymentOrder struct {
	OrderID         string
	ProviderOrderID string
	ProviderKeyID   string
	Amount          int64
	Currency        string
	Provider        string
}
