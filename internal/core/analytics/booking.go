package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking categories as recorded by the ledger.
const (
	CategoryTransportation = "transportation"
	CategoryStay           = "stay"
	CategoryDining         = "dining"
	CategoryActivity       = "activity"

	// CategoryUnattributed collects records whose category is missing or
	// unknown. They still count toward totals and the status breakdown.
	CategoryUnattributed = "other"
)

// Booking statuses as recorded by the ledger.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// PaymentMethodUnattributed labels records with a missing payment method.
const PaymentMethodUnattributed = "other"

// TransportUnattributed labels transportation records with no sub-category.
const TransportUnattributed = "other"

// BookingRecord is the read model of one ledger transaction. The ledger owns
// these; the analytics engine only ever reads them. Total is exact decimal —
// revenue must survive aggregation without float drift.
type BookingRecord struct {
	ID                string
	CustomerID        string
	VendorID          string
	VendorName        string
	Category          string
	TransportCategory string // meaningful only when Category is transportation
	Status            string
	PaymentMethod     string
	Total             decimal.Decimal
	CreatedAt         time.Time

	// LedgerSeq is the monotonic sequence assigned by the ledger store.
	// Cursor for batched range scans; never exposed to callers.
	LedgerSeq int64
}

// KnownCategory reports whether c is one of the fixed ledger categories.
func KnownCategory(c string) bool {
	switch c {
	case CategoryTransportation, CategoryStay, CategoryDining, CategoryActivity:
		return true
	}
	return false
}

// RevenueQualifying reports whether a booking contributes to revenue totals
// and the category/vendor/transport/payment breakdowns. Policy: confirmed
// bookings only. The status breakdown counts every status regardless.
func (b *BookingRecord) RevenueQualifying() bool {
	return b.Status == StatusConfirmed
}
