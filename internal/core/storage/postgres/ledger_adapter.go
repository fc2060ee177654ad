package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/analytics"
	"github.com/shopspring/decimal"
)

// RetrieveBookingsInRange implements storage.LedgerStore against the bookings
// table. Read-only: the ledger belongs to the booking service; this adapter
// never writes it.
func (a *Adapter) RetrieveBookingsInRange(
	ctx context.Context,
	start time.Time,
	end time.Time,
	cursor int64,
	limit int,
) ([]*analytics.BookingRecord, error) {
	rows, err := a.db.QueryContext(ctx, queryRetrieveBookingsInRange, start, end, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("query bookings in range: %w", err)
	}
	defer rows.Close()

	var records []*analytics.BookingRecord
	for rows.Next() {
		var (
			rec      analytics.BookingRecord
			totalStr string
		)
		err := rows.Scan(
			&rec.ID,
			&rec.CustomerID,
			&rec.VendorID,
			&rec.VendorName,
			&rec.Category,
			&rec.TransportCategory,
			&rec.Status,
			&rec.PaymentMethod,
			&totalStr,
			&rec.CreatedAt,
			&rec.LedgerSeq,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}

		rec.Total, err = decimal.NewFromString(totalStr)
		if err != nil {
			return nil, fmt.Errorf("parse booking total %q: %w", totalStr, err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return records, nil
}
