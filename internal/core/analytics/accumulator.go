package analytics

import (
	"sort"
	"time"

	"github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"
	"github.com/shopspring/decimal"
)

// Accumulator builds one bucket's aggregates in memory during a ledger scan.
// Breakdowns accumulate in maps for O(1) folding and convert to sorted lists
// only at finalization — maps are never persisted.
type Accumulator struct {
	granularity temporal.Granularity
	key         temporal.Key
	anchor      time.Time

	totalRevenue  decimal.Decimal
	totalBookings int64

	byCategory  map[string]*revenueCount
	byTransport map[string]*revenueCount
	byStatus    map[string]*statusCount
	byPayment   map[string]*revenueCount
	byVendor    map[string]*vendorCount
}

type revenueCount struct {
	revenue  decimal.Decimal
	bookings int64
}

type statusCount struct {
	count   int64
	revenue decimal.Decimal
}

type vendorCount struct {
	name     string
	revenue  decimal.Decimal
	bookings int64
}

// NewAccumulator creates an empty accumulator for the bucket containing date.
func NewAccumulator(g temporal.Granularity, date time.Time) *Accumulator {
	return &Accumulator{
		granularity:  g,
		key:          temporal.KeyFor(g, date),
		anchor:       temporal.AnchorFor(g, date),
		totalRevenue: decimal.Zero,
		byCategory:   make(map[string]*revenueCount),
		byTransport:  make(map[string]*revenueCount),
		byStatus:     make(map[string]*statusCount),
		byPayment:    make(map[string]*revenueCount),
		byVendor:     make(map[string]*vendorCount),
	}
}

// Key returns the canonical temporal key of the bucket being accumulated.
func (a *Accumulator) Key() temporal.Key { return a.key }

// Observe folds one ledger record into the accumulator.
// The status breakdown counts every record; revenue totals and the
// category/transport/payment/vendor breakdowns count only revenue-qualifying
// (confirmed) bookings.
func (a *Accumulator) Observe(rec *BookingRecord) {
	status := rec.Status
	sc, ok := a.byStatus[status]
	if !ok {
		sc = &statusCount{revenue: decimal.Zero}
		a.byStatus[status] = sc
	}
	sc.count++
	sc.revenue = sc.revenue.Add(rec.Total)

	if !rec.RevenueQualifying() {
		return
	}

	a.totalRevenue = a.totalRevenue.Add(rec.Total)
	a.totalBookings++

	category := rec.Category
	if !KnownCategory(category) {
		category = CategoryUnattributed
	}
	addRevenue(a.byCategory, category, rec.Total)

	if category == CategoryTransportation {
		transport := rec.TransportCategory
		if transport == "" {
			transport = TransportUnattributed
		}
		addRevenue(a.byTransport, transport, rec.Total)
	}

	method := rec.PaymentMethod
	if method == "" {
		method = PaymentMethodUnattributed
	}
	addRevenue(a.byPayment, method, rec.Total)

	// Records without a vendor still count toward totals above but are
	// excluded from the vendor ranking.
	if rec.VendorID != "" {
		vc, ok := a.byVendor[rec.VendorID]
		if !ok {
			vc = &vendorCount{name: rec.VendorName, revenue: decimal.Zero}
			a.byVendor[rec.VendorID] = vc
		}
		vc.revenue = vc.revenue.Add(rec.Total)
		vc.bookings++
		if vc.name == "" {
			vc.name = rec.VendorName
		}
	}
}

func addRevenue(m map[string]*revenueCount, key string, amount decimal.Decimal) {
	rc, ok := m[key]
	if !ok {
		rc = &revenueCount{revenue: decimal.Zero}
		m[key] = rc
	}
	rc.revenue = rc.revenue.Add(amount)
	rc.bookings++
}

// Finalize converts the accumulated maps into a persistable bucket.
// All lists are deterministically ordered so rebuilding the same range from
// the same ledger state yields byte-identical buckets.
func (a *Accumulator) Finalize(now time.Time) *Bucket {
	b := NewZeroBucket(a.granularity, a.anchor, now)
	b.Key = a.key
	b.TotalRevenue = a.totalRevenue
	b.TotalBookings = a.totalBookings
	b.AverageOrderValue = SafeAverage(a.totalRevenue, a.totalBookings)

	for _, category := range sortedKeys(a.byCategory) {
		rc := a.byCategory[category]
		b.RevenueByCategory = append(b.RevenueByCategory, CategoryRevenue{
			Category:          category,
			Revenue:           rc.revenue,
			Bookings:          rc.bookings,
			AverageOrderValue: SafeAverage(rc.revenue, rc.bookings),
		})
	}

	for _, transport := range sortedKeys(a.byTransport) {
		rc := a.byTransport[transport]
		b.RevenueByTransportCategory = append(b.RevenueByTransportCategory, TransportRevenue{
			TransportCategory: transport,
			Revenue:           rc.revenue,
			Bookings:          rc.bookings,
			AverageOrderValue: SafeAverage(rc.revenue, rc.bookings),
		})
	}

	statuses := make([]string, 0, len(a.byStatus))
	for status := range a.byStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		sc := a.byStatus[status]
		b.BookingsByStatus = append(b.BookingsByStatus, StatusBreakdown{
			Status:  status,
			Count:   sc.count,
			Revenue: sc.revenue,
		})
	}

	for _, method := range sortedKeys(a.byPayment) {
		rc := a.byPayment[method]
		b.RevenueByPaymentMethod = append(b.RevenueByPaymentMethod, PaymentMethodRevenue{
			Method:   method,
			Revenue:  rc.revenue,
			Bookings: rc.bookings,
		})
	}

	ranking := NewVendorRanking()
	for id, vc := range a.byVendor {
		ranking.add(id, vc.name, vc.revenue, vc.bookings)
	}
	b.TopVendors = ranking.Top()
	return b
}

// VendorRanking re-ranks vendors from per-vendor revenue sums. The same type
// serves bucket finalization and the range-merge path: summing happens before
// sorting, so a vendor split across buckets still ranks on its merged total.
type VendorRanking struct {
	byVendor map[string]*vendorCount
}

// NewVendorRanking returns an empty ranking accumulator.
func NewVendorRanking() *VendorRanking {
	return &VendorRanking{byVendor: make(map[string]*vendorCount)}
}

// Add folds a pre-aggregated vendor entry into the ranking.
func (r *VendorRanking) Add(v VendorRevenue) {
	r.add(v.VendorID, v.VendorName, v.Revenue, v.Bookings)
}

func (r *VendorRanking) add(id, name string, revenue decimal.Decimal, bookings int64) {
	vc, ok := r.byVendor[id]
	if !ok {
		vc = &vendorCount{name: name, revenue: decimal.Zero}
		r.byVendor[id] = vc
	}
	vc.revenue = vc.revenue.Add(revenue)
	vc.bookings += bookings
	if vc.name == "" {
		vc.name = name
	}
}

// Top returns vendors sorted by revenue descending, ties broken ascending by
// vendor id for determinism, truncated to TopVendorLimit.
func (r *VendorRanking) Top() []VendorRevenue {
	vendors := make([]VendorRevenue, 0, len(r.byVendor))
	for id, vc := range r.byVendor {
		vendors = append(vendors, VendorRevenue{
			VendorID:          id,
			VendorName:        vc.name,
			Revenue:           vc.revenue,
			Bookings:          vc.bookings,
			AverageOrderValue: SafeAverage(vc.revenue, vc.bookings),
		})
	}

	sort.Slice(vendors, func(i, j int) bool {
		if !vendors[i].Revenue.Equal(vendors[j].Revenue) {
			return vendors[i].Revenue.GreaterThan(vendors[j].Revenue)
		}
		return vendors[i].VendorID < vendors[j].VendorID
	})

	if len(vendors) > TopVendorLimit {
		vendors = vendors[:TopVendorLimit]
	}
	return vendors
}

func sortedKeys(m map[string]*revenueCount) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
