package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ninthwaka_backend/internal/models"
)

// PayoutRepository defines the interface for rider payout persistence.
type PayoutRepository interface {
	// Upsert inserts or replaces the payout for its (rider_id, week_start) key.
	// A payout that has already been marked paid is never touched; in that case
	// Upsert returns (nil, false, nil) so the caller can report it as skipped.
	Upsert(payout *models.RiderPayout) (*models.RiderPayout, bool, error)

	GetPayoutByID(payoutID int64) (*models.RiderPayout, error)
	GetPayouts(filters models.PayoutFilters) ([]models.RiderPayout, error)

	// MarkPaid sets status=paid and paid_at, guarded on the payout still being
	// pending. Returns false if the guard did not match.
	MarkPaid(payoutID int64, paidAt time.Time) (bool, error)
}

type payoutRepository struct {
	db *sql.DB
}

// NewPayoutRepository creates a new instance of PayoutRepository.
func NewPayoutRepository(db *sql.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

const payoutColumns = `id, rider_id, week_start, week_end, orders,
	total_gross, total_commission, total_rider_net, order_count,
	status, paid_at, created_at, updated_at`

func scanPayout(s interface{ Scan(...interface{}) error }) (*models.RiderPayout, error) {
	p := &models.RiderPayout{}
	var ordersJSON []byte
	var paidAt sql.NullTime
	err := s.Scan(
		&p.ID, &p.RiderID, &p.WeekStart, &p.WeekEnd, &ordersJSON,
		&p.Totals.Gross, &p.Totals.Commission, &p.Totals.RiderNet, &p.Totals.Count,
		&p.Status, &paidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	if err := json.Unmarshal(ordersJSON, &p.Orders); err != nil {
		return nil, fmt.Errorf("unmarshalling payout order snapshots: %w", err)
	}
	return p, nil
}

func (r *payoutRepository) Upsert(payout *models.RiderPayout) (*models.RiderPayout, bool, error) {
	ordersJSON, err := json.Marshal(payout.Orders)
	if err != nil {
		return nil, false, fmt.Errorf("marshalling payout order snapshots: %w", err)
	}

	now := time.Now()
	// The DO UPDATE ... WHERE clause is the settlement guard: a paid payout
	// must never be reverted to pending or have its totals overwritten.
	query := `INSERT INTO rider_payouts
	            (rider_id, week_start, week_end, orders,
	             total_gross, total_commission, total_rider_net, order_count,
	             status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	          ON CONFLICT (rider_id, week_start)
	          DO UPDATE SET
	              week_end = EXCLUDED.week_end,
	              orders = EXCLUDED.orders,
	              total_gross = EXCLUDED.total_gross,
	              total_commission = EXCLUDED.total_commission,
	              total_rider_net = EXCLUDED.total_rider_net,
	              order_count = EXCLUDED.order_count,
	              updated_at = EXCLUDED.updated_at
	          WHERE rider_payouts.status <> 'paid'
	          RETURNING ` + payoutColumns

	row := r.db.QueryRow(query,
		payout.RiderID, payout.WeekStart, payout.WeekEnd, ordersJSON,
		payout.Totals.Gross, payout.Totals.Commission, payout.Totals.RiderNet, payout.Totals.Count,
		models.PayoutStatusPending, now,
	)
	saved, err := scanPayout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict hit a paid payout; the guard blocked the update.
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: upserting payout for rider %d week %s: %v",
			ErrDatabaseError, payout.RiderID, payout.WeekStart.Format("2006-01-02"), err)
	}
	return saved, true, nil
}

func (r *payoutRepository) GetPayoutByID(payoutID int64) (*models.RiderPayout, error) {
	row := r.db.QueryRow(`SELECT `+payoutColumns+` FROM rider_payouts WHERE id = $1`, payoutID)
	payout, err := scanPayout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payout by ID %d: %v", ErrDatabaseError, payoutID, err)
	}
	return payout, nil
}

func (r *payoutRepository) GetPayouts(filters models.PayoutFilters) ([]models.RiderPayout, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + payoutColumns + ` FROM rider_payouts`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.RiderID != nil {
		conditions = append(conditions, fmt.Sprintf("rider_id = $%d", argCounter))
		args = append(args, *filters.RiderID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.WeekStart != nil {
		conditions = append(conditions, fmt.Sprintf("week_start = $%d", argCounter))
		args = append(args, *filters.WeekStart)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY week_start DESC, rider_id ASC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payouts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	payouts := []models.RiderPayout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning payout: %v", ErrDatabaseError, err)
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payout rows: %v", ErrDatabaseError, err)
	}
	return payouts, nil
}

func (r *payoutRepository) MarkPaid(payoutID int64, paidAt time.Time) (bool, error) {
	result, err := r.db.Exec(
		`UPDATE rider_payouts SET status = $1, paid_at = $2, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		models.PayoutStatusPaid, paidAt, payoutID, models.PayoutStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("%w: marking payout %d paid: %v", ErrDatabaseError, payoutID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for payout %d: %v", ErrDatabaseError, payoutID, err)
	}
	return rowsAffected == 1, nil
}
