package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(status, category string, total int64) *BookingRecord {
	return &BookingRecord{
		ID:            "bk-" + status + "-" + category,
		VendorID:      "vendor-1",
		VendorName:    "Island Tours",
		Category:      category,
		Status:        status,
		PaymentMethod: "card",
		Total:         decimal.NewFromInt(total),
		CreatedAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAccumulator_ConfirmedOnlyRevenuePolicy(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	acc.Observe(booking(StatusConfirmed, CategoryDining, 100))
	acc.Observe(booking(StatusPending, CategoryDining, 50))
	acc.Observe(booking(StatusCancelled, CategoryActivity, 75))

	b := acc.Finalize(time.Now().UTC())

	// Only the confirmed booking feeds revenue totals and breakdowns.
	require.True(t, b.TotalRevenue.Equal(decimal.NewFromInt(100)), "total revenue = %s", b.TotalRevenue)
	require.EqualValues(t, 1, b.TotalBookings)
	require.Len(t, b.RevenueByCategory, 1)
	require.Equal(t, CategoryDining, b.RevenueByCategory[0].Category)
	require.Len(t, b.TopVendors, 1)
	require.True(t, b.TopVendors[0].Revenue.Equal(decimal.NewFromInt(100)))

	// The status breakdown counts every status with its own revenue.
	require.Len(t, b.BookingsByStatus, 3)
	byStatus := make(map[string]StatusBreakdown)
	for _, s := range b.BookingsByStatus {
		byStatus[s.Status] = s
	}
	assert.EqualValues(t, 1, byStatus[StatusPending].Count)
	assert.True(t, byStatus[StatusPending].Revenue.Equal(decimal.NewFromInt(50)))
	assert.True(t, byStatus[StatusCancelled].Revenue.Equal(decimal.NewFromInt(75)))
}

func TestAccumulator_AverageOrderValue(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	acc.Observe(booking(StatusConfirmed, CategoryDining, 100))
	acc.Observe(booking(StatusConfirmed, CategoryDining, 51))

	b := acc.Finalize(time.Now().UTC())
	require.True(t, b.AverageOrderValue.Equal(decimal.NewFromFloat(75.5)), "aov = %s", b.AverageOrderValue)
}

func TestAccumulator_ZeroBookingsYieldsZeroAverage(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	acc.Observe(booking(StatusCancelled, CategoryDining, 100))

	b := acc.Finalize(time.Now().UTC())
	require.True(t, b.AverageOrderValue.IsZero())
	require.True(t, b.TotalRevenue.IsZero())
}

func TestAccumulator_UnattributedCategoryAndVendor(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	rec := booking(StatusConfirmed, "", 40)
	rec.VendorID = ""
	rec.PaymentMethod = ""
	acc.Observe(rec)

	b := acc.Finalize(time.Now().UTC())

	require.True(t, b.TotalRevenue.Equal(decimal.NewFromInt(40)))
	require.Len(t, b.RevenueByCategory, 1)
	require.Equal(t, CategoryUnattributed, b.RevenueByCategory[0].Category)
	require.Len(t, b.RevenueByPaymentMethod, 1)
	require.Equal(t, PaymentMethodUnattributed, b.RevenueByPaymentMethod[0].Method)
	require.Empty(t, b.TopVendors, "vendorless records must not enter the ranking")
}

func TestAccumulator_TransportSubCategory(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	rec := booking(StatusConfirmed, CategoryTransportation, 60)
	rec.TransportCategory = "car-rental"
	acc.Observe(rec)

	other := booking(StatusConfirmed, CategoryDining, 30)
	other.TransportCategory = "car-rental" // must be ignored for non-transportation
	acc.Observe(other)

	b := acc.Finalize(time.Now().UTC())
	require.Len(t, b.RevenueByTransportCategory, 1)
	require.Equal(t, "car-rental", b.RevenueByTransportCategory[0].TransportCategory)
	require.True(t, b.RevenueByTransportCategory[0].Revenue.Equal(decimal.NewFromInt(60)))
}

func TestVendorRanking_BoundAndTieBreak(t *testing.T) {
	acc := NewAccumulator(temporal.Daily, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	// 12 vendors: vendor-00 has the highest revenue, vendor-10 and
	// vendor-11 tie at the bottom of the top 10.
	for i := 0; i < 12; i++ {
		rec := booking(StatusConfirmed, CategoryActivity, 100)
		rec.VendorID = fmt.Sprintf("vendor-%02d", i)
		rec.VendorName = fmt.Sprintf("Vendor %02d", i)
		rec.Total = decimal.NewFromInt(int64(200 - i*10))
		if i >= 10 {
			rec.Total = decimal.NewFromInt(5)
		}
		acc.Observe(rec)
	}

	b := acc.Finalize(time.Now().UTC())

	require.Len(t, b.TopVendors, TopVendorLimit)
	require.Equal(t, "vendor-00", b.TopVendors[0].VendorID)
	for i := 1; i < len(b.TopVendors); i++ {
		require.True(t,
			b.TopVendors[i-1].Revenue.GreaterThanOrEqual(b.TopVendors[i].Revenue),
			"ranking not descending at %d", i)
	}
}

func TestVendorRanking_MergeSumsBeforeSorting(t *testing.T) {
	ranking := NewVendorRanking()
	ranking.Add(VendorRevenue{VendorID: "v-a", VendorName: "A", Revenue: decimal.NewFromInt(40), Bookings: 1})
	ranking.Add(VendorRevenue{VendorID: "v-b", VendorName: "B", Revenue: decimal.NewFromInt(100), Bookings: 2})
	ranking.Add(VendorRevenue{VendorID: "v-a", VendorName: "A", Revenue: decimal.NewFromInt(70), Bookings: 1})

	top := ranking.Top()
	require.Len(t, top, 2)
	require.Equal(t, "v-a", top[0].VendorID)
	require.True(t, top[0].Revenue.Equal(decimal.NewFromInt(110)))
	require.EqualValues(t, 2, top[0].Bookings)
}

func TestVendorRanking_DeterministicTieBreak(t *testing.T) {
	ranking := NewVendorRanking()
	ranking.Add(VendorRevenue{VendorID: "v-z", Revenue: decimal.NewFromInt(50)})
	ranking.Add(VendorRevenue{VendorID: "v-a", Revenue: decimal.NewFromInt(50)})

	top := ranking.Top()
	require.Equal(t, "v-a", top[0].VendorID)
	require.Equal(t, "v-z", top[1].VendorID)
}

func TestFinalize_DeterministicOrdering(t *testing.T) {
	build := func() *Bucket {
		acc := NewAccumulator(temporal.Monthly, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		for _, cat := range []string{CategoryStay, CategoryDining, CategoryActivity, CategoryTransportation} {
			acc.Observe(booking(StatusConfirmed, cat, 25))
		}
		acc.Observe(booking(StatusPending, CategoryStay, 10))
		return acc.Finalize(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	}

	first := build()
	second := build()
	require.Equal(t, first, second, "rebuild from identical input must be identical")
}
