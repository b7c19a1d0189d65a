package models

import "fmt"

// Receipt is one itemized expense submission attached to exactly one period.
// The attachment is decided at write time; BelongsToDate is display-only and
// may point into an earlier, already-settled week.
type Receipt struct {
	// ID is creation-timestamp derived (YYYY-MM-DDTHHMMSS plus a short
	// random suffix), unique within its period.
	ID string `json:"receiptId"`

	// SubmittedBy is the user who entered the receipt; PaidBy is the user
	// whose money covered it. They may differ.
	SubmittedBy     string `json:"submittedBy"`
	SubmittedByName string `json:"submittedByName,omitempty"`
	PaidBy          string `json:"paidBy"`
	PaidByName      string `json:"paidByName,omitempty"`

	// BelongsToDate is the logical date chosen by the submitter
	// (YYYY-MM-DD). Used for display grouping only; it does not decide the
	// ledger attachment when that week is already settled.
	BelongsToDate string `json:"belongsToDate"`

	Memo string `json:"memo,omitempty"`

	// ImageRef is an opaque reference into external object storage.
	// Never dereferenced or validated here.
	ImageRef string `json:"imageRef,omitempty"`

	Items []ReceiptItem `json:"items"`

	// TotalAmount equals the sum of Items[].Amount.
	TotalAmount int64 `json:"totalAmount"`

	// CreatedAt is the Unix timestamp when the receipt was submitted.
	CreatedAt int64 `json:"createdAt"`
}

// ReceiptItem is a single line item shared by one or more participants.
type ReceiptItem struct {
	ItemName string `json:"itemName"`
	Amount   int64  `json:"amount"`

	// SplitAmong is the non-empty set of user IDs sharing this item.
	SplitAmong []string `json:"splitAmong"`

	// PerPerson is floor(Amount / len(SplitAmong)). The remainder is not
	// assigned to anyone.
	PerPerson int64 `json:"perPerson"`
}

// ReceiptDraft is the unvalidated submission shape accepted at the ledger
// boundary.
type ReceiptDraft struct {
	SubmittedBy     string
	SubmittedByName string
	PaidBy          string
	PaidByName      string
	BelongsToDate   string
	Memo            string
	ImageRef        string
	Items           []ItemDraft
}

// ItemDraft is a single unvalidated line item.
type ItemDraft struct {
	ItemName   string
	Amount     int64
	SplitAmong []string
}

// Validate rejects drafts that would break the ledger invariants.
// A draft that passes is safe to persist as-is.
func (d *ReceiptDraft) Validate() error {
	if d.PaidBy == "" {
		return &ValidationError{Field: "paidBy", Reason: "payer is required"}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for i, item := range d.Items {
		if item.ItemName == "" {
			return &ValidationError{Field: "items", Reason: itemReason(i, "name must not be empty")}
		}
		if item.Amount <= 0 {
			return &ValidationError{Field: "items", Reason: itemReason(i, "amount must be positive")}
		}
		if len(item.SplitAmong) == 0 {
			return &ValidationError{Field: "items", Reason: itemReason(i, "splitAmong must not be empty")}
		}
		for _, id := range item.SplitAmong {
			if id == "" {
				return &ValidationError{Field: "items", Reason: itemReason(i, "splitAmong contains an empty user id")}
			}
		}
	}
	return nil
}

func itemReason(i int, msg string) string {
	return fmt.Sprintf("item %d: %s", i+1, msg)
}

// TotalAmount returns the sum of the draft's item amounts.
func (d *ReceiptDraft) TotalAmount() int64 {
	var total int64
	for _, item := range d.Items {
		total += item.Amount
	}
	return total
}
