package models

// ParticipantBalance is one member's derived position within a period.
// It is recomputed in full from the receipt set; only the confirmation
// flags carry state of their own, and those are meaningful only after the
// period is settled.
type ParticipantBalance struct {
	UserID string `json:"userId"`

	// DisplayName comes from the roster when available, otherwise from the
	// name captured on the receipt at write time, otherwise the raw ID.
	// Enrichment never affects the arithmetic.
	DisplayName string `json:"displayName"`

	// TotalPaid is the sum of TotalAmount over receipts this user paid.
	TotalPaid int64 `json:"totalPaid"`

	// TotalOwed is the sum of PerPerson over items this user shares.
	TotalOwed int64 `json:"totalOwed"`

	// Balance = TotalPaid - TotalOwed. Positive means the user is owed
	// money; negative means the user owes money.
	Balance int64 `json:"balance"`

	// PaymentConfirmed marks a debtor's balance as paid out;
	// TransferCompleted marks a creditor's balance as transferred.
	// Pure audit flags: independently toggleable, never derived from
	// Balance, zero effect on the arithmetic. By convention callers expose
	// PaymentConfirmed for negative balances and TransferCompleted for
	// positive ones, but this is not enforced.
	PaymentConfirmed  bool `json:"paymentConfirmed"`
	TransferCompleted bool `json:"transferCompleted"`
}

// ConfirmationFlag selects one of the two post-settlement audit flags.
type ConfirmationFlag string

const (
	FlagPaymentConfirmed  ConfirmationFlag = "payment_confirmed"
	FlagTransferCompleted ConfirmationFlag = "transfer_completed"
)

// Member is a roster entry for a space. The settlement engine reads members
// for display enrichment and finalize-time contact lookup only; membership
// administration happens elsewhere.
type Member struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`

	// Contact is an opaque handle (phone number) passed to the
	// notification gateway at finalize time. May be empty.
	Contact string `json:"contact,omitempty"`
}
