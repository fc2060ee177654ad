package postgres

// SQL for the booking ledger scan and the analytics bucket store.
// Bucket identity is the (granularity, year, month, week, day) tuple;
// fields not applicable to a granularity are stored as 0 so the unique
// index covers every granularity with one shape.

const (
	// queryRetrieveBookingsInRange pages through ledger records created in
	// [start, end) after a cursor, in strict ledger-sequence order. The
	// cursor prevents batch-boundary loss when the same timestamp spans
	// two batches.
	queryRetrieveBookingsInRange = `
		SELECT
			id, customer_id, vendor_id, vendor_name,
			category, transport_category, status, payment_method,
			total, created_at, ledger_seq
		FROM bookings
		WHERE created_at >= $1
		  AND created_at < $2
		  AND ledger_seq > $3
		ORDER BY ledger_seq ASC
		LIMIT $4
	`

	// queryInsertZeroBucket seeds an empty bucket. DO NOTHING on conflict
	// makes GetOrCreate an atomic upsert rather than a read-then-insert race.
	queryInsertZeroBucket = `
		INSERT INTO analytics_buckets (
			granularity, year, month, week, day, anchor_date,
			total_revenue, total_bookings, average_order_value,
			revenue_by_category, revenue_by_transport_category,
			bookings_by_status, revenue_by_payment_method, top_vendors,
			growth_metrics, last_updated, needs_recalculation
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, '[]', '[]', '[]', '[]', '[]', $7, $8, FALSE)
		ON CONFLICT (granularity, year, month, week, day) DO NOTHING
	`

	// queryUpsertBucket replaces a bucket wholesale by its temporal identity.
	queryUpsertBucket = `
		INSERT INTO analytics_buckets (
			granularity, year, month, week, day, anchor_date,
			total_revenue, total_bookings, average_order_value,
			revenue_by_category, revenue_by_transport_category,
			bookings_by_status, revenue_by_payment_method, top_vendors,
			growth_metrics, last_updated, needs_recalculation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (granularity, year, month, week, day)
		DO UPDATE SET
			anchor_date                   = EXCLUDED.anchor_date,
			total_revenue                 = EXCLUDED.total_revenue,
			total_bookings                = EXCLUDED.total_bookings,
			average_order_value           = EXCLUDED.average_order_value,
			revenue_by_category           = EXCLUDED.revenue_by_category,
			revenue_by_transport_category = EXCLUDED.revenue_by_transport_category,
			bookings_by_status            = EXCLUDED.bookings_by_status,
			revenue_by_payment_method     = EXCLUDED.revenue_by_payment_method,
			top_vendors                   = EXCLUDED.top_vendors,
			growth_metrics                = EXCLUDED.growth_metrics,
			last_updated                  = EXCLUDED.last_updated,
			needs_recalculation           = EXCLUDED.needs_recalculation
	`

	bucketColumns = `
		granularity, year, month, week, day, anchor_date,
		total_revenue, total_bookings, average_order_value,
		revenue_by_category, revenue_by_transport_category,
		bookings_by_status, revenue_by_payment_method, top_vendors,
		growth_metrics, last_updated, needs_recalculation
	`

	queryFindBucketByKey = `
		SELECT ` + bucketColumns + `
		FROM analytics_buckets
		WHERE granularity = $1 AND year = $2 AND month = $3 AND week = $4 AND day = $5
	`

	queryBucketsInRange = `
		SELECT ` + bucketColumns + `
		FROM analytics_buckets
		WHERE granularity = $1
		  AND anchor_date >= $2
		  AND anchor_date <= $3
		ORDER BY anchor_date ASC
	`

	queryDeleteBucketsInRange = `
		DELETE FROM analytics_buckets
		WHERE granularity = $1
		  AND anchor_date >= $2
		  AND anchor_date <= $3
	`

	queryFlagBucketsInRange = `
		UPDATE analytics_buckets
		SET needs_recalculation = TRUE, last_updated = $4
		WHERE granularity = $1
		  AND anchor_date >= $2
		  AND anchor_date <= $3
	`
)
