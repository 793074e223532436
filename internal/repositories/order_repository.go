package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ninthwaka_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
// Status-changing methods take the timeline entry to append so that the status
// update and its audit row commit atomically; the conditional methods report
// whether the guarded update actually applied (false = lost the race or the
// current status no longer matched).
type OrderRepository interface {
	CreateOrder(order *models.Order, entry models.TimelineEntry) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, error)

	// AcceptOrder sets rider_id and status=assigned only if the order is still
	// pending and unassigned. Atomic conditional update, not read-modify-write.
	AcceptOrder(orderID, riderID int64, entry models.TimelineEntry) (bool, error)

	// UpdateOrderStatus moves the order from fromStatus to toStatus, guarded on
	// the current status still being fromStatus.
	UpdateOrderStatus(orderID int64, fromStatus, toStatus string, entry models.TimelineEntry) (bool, error)

	SetDeliveryOTP(orderID int64, code string, expiresAt time.Time) error

	// FinalizeDelivery transitions to delivered and freezes the financial split
	// in one statement, guarded on the order still being in an active status.
	FinalizeDelivery(orderID int64, fin models.Financial, verifiedAt *time.Time, deliveredAt time.Time, entry models.TimelineEntry) (bool, error)

	UpdateDeliveryProof(orderID int64, delivery models.Delivery) error
	ListDeliveredBetween(start, end time.Time) ([]models.Order, error)
	CountOrdersByStatus(start, end time.Time) (map[string]int, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, customer_id, rider_id,
	pickup_address, pickup_lat, pickup_lng,
	dropoff_address, dropoff_lat, dropoff_lng,
	items, price, status,
	otp_code, otp_expires_at, otp_verified_at, delivered_at,
	proof_photo_url, proof_recipient_name, proof_recipient_phone, proof_note,
	gross_amount, commission_rate_pct, commission_amount, rider_net_amount,
	created_at, updated_at`

func scanOrder(s interface{ Scan(...interface{}) error }) (*models.Order, error) {
	o := &models.Order{}
	var (
		riderID                                             sql.NullInt64
		pickupLat, pickupLng, dropoffLat, dropoffLng        sql.NullFloat64
		otpCode, photoURL, recipName, recipPhone, proofNote sql.NullString
		otpExpiresAt, otpVerifiedAt, deliveredAt            sql.NullTime
		gross, ratePct, commission, riderNet                sql.NullFloat64
	)
	err := s.Scan(
		&o.ID, &o.CustomerID, &riderID,
		&o.Pickup.Address, &pickupLat, &pickupLng,
		&o.Dropoff.Address, &dropoffLat, &dropoffLng,
		&o.Items, &o.Price, &o.Status,
		&otpCode, &otpExpiresAt, &otpVerifiedAt, &deliveredAt,
		&photoURL, &recipName, &recipPhone, &proofNote,
		&gross, &ratePct, &commission, &riderNet,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if riderID.Valid {
		v := riderID.Int64
		o.RiderID = &v
	}
	if pickupLat.Valid {
		o.Pickup.Lat = &pickupLat.Float64
	}
	if pickupLng.Valid {
		o.Pickup.Lng = &pickupLng.Float64
	}
	if dropoffLat.Valid {
		o.Dropoff.Lat = &dropoffLat.Float64
	}
	if dropoffLng.Valid {
		o.Dropoff.Lng = &dropoffLng.Float64
	}
	if otpCode.Valid {
		o.Delivery.OTPCode = &otpCode.String
	}
	if otpExpiresAt.Valid {
		o.Delivery.OTPExpiresAt = &otpExpiresAt.Time
	}
	if otpVerifiedAt.Valid {
		o.Delivery.OTPVerifiedAt = &otpVerifiedAt.Time
	}
	if deliveredAt.Valid {
		o.Delivery.DeliveredAt = &deliveredAt.Time
	}
	if photoURL.Valid {
		o.Delivery.PhotoURL = &photoURL.String
	}
	if recipName.Valid {
		o.Delivery.RecipientName = &recipName.String
	}
	if recipPhone.Valid {
		o.Delivery.RecipientPhone = &recipPhone.String
	}
	if proofNote.Valid {
		o.Delivery.Note = &proofNote.String
	}
	if gross.Valid {
		o.Financial = &models.Financial{
			GrossAmount:       gross.Float64,
			CommissionRatePct: ratePct.Float64,
			CommissionAmount:  commission.Float64,
			RiderNetAmount:    riderNet.Float64,
		}
	}
	return o, nil
}

func appendTimeline(executor SQLExecutor, orderID int64, entry models.TimelineEntry) error {
	_, err := executor.Exec(
		`INSERT INTO order_timeline (order_id, status, note, at) VALUES ($1, $2, $3, $4)`,
		orderID, entry.Status, models.NewNullString(entry.Note), entry.At,
	)
	return err
}

func (r *orderRepository) CreateOrder(order *models.Order, entry models.TimelineEntry) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	query := `INSERT INTO orders
	            (customer_id, pickup_address, pickup_lat, pickup_lng,
	             dropoff_address, dropoff_lat, dropoff_lng,
	             items, price, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	err = tx.QueryRow(query,
		order.CustomerID, order.Pickup.Address, order.Pickup.Lat, order.Pickup.Lng,
		order.Dropoff.Address, order.Dropoff.Lat, order.Dropoff.Lng,
		order.Items, order.Price, order.Status, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}

	if err := appendTimeline(tx, order.ID, entry); err != nil {
		return 0, fmt.Errorf("%w: appending creation timeline entry: %v", ErrDatabaseError, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing order creation: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}

	timeline, err := r.getTimeline(orderID)
	if err != nil {
		return nil, err
	}
	order.Timeline = timeline
	return order, nil
}

func (r *orderRepository) getTimeline(orderID int64) ([]models.TimelineEntry, error) {
	rows, err := r.db.Query(
		`SELECT status, note, at FROM order_timeline WHERE order_id = $1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying timeline for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	timeline := []models.TimelineEntry{}
	for rows.Next() {
		var e models.TimelineEntry
		var note sql.NullString
		if err := rows.Scan(&e.Status, &note, &e.At); err != nil {
			return nil, fmt.Errorf("%w: scanning timeline entry: %v", ErrDatabaseError, err)
		}
		if note.Valid {
			e.Note = note.String
		}
		timeline = append(timeline, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating timeline rows: %v", ErrDatabaseError, err)
	}
	return timeline, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + ` FROM orders`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argCounter))
		args = append(args, *filters.CustomerID)
		argCounter++
	}
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
	if filters.Unassigned {
		conditions = append(conditions, "rider_id IS NULL")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 1 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *orderRepository) AcceptOrder(orderID, riderID int64, entry models.TimelineEntry) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE orders SET rider_id = $1, status = $2, updated_at = $3
		 WHERE id = $4 AND status = $5 AND rider_id IS NULL`,
		riderID, models.OrderStatusAssigned, entry.At, orderID, models.OrderStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("%w: accepting order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for accept of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if err := appendTimeline(tx, orderID, entry); err != nil {
		return false, fmt.Errorf("%w: appending accept timeline entry: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: committing accept of order %d: %v", ErrDatabaseError, orderID, err)
	}
	return true, nil
}

func (r *orderRepository) UpdateOrderStatus(orderID int64, fromStatus, toStatus string, entry models.TimelineEntry) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		toStatus, entry.At, orderID, fromStatus,
	)
	if err != nil {
		return false, fmt.Errorf("%w: updating status of order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for status update of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if err := appendTimeline(tx, orderID, entry); err != nil {
		return false, fmt.Errorf("%w: appending status timeline entry: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: committing status update of order %d: %v", ErrDatabaseError, orderID, err)
	}
	return true, nil
}

func (r *orderRepository) SetDeliveryOTP(orderID int64, code string, expiresAt time.Time) error {
	result, err := r.db.Exec(
		`UPDATE orders SET otp_code = $1, otp_expires_at = $2, updated_at = $3 WHERE id = $4`,
		code, expiresAt, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: setting delivery OTP for order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for OTP update of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) FinalizeDelivery(orderID int64, fin models.Financial, verifiedAt *time.Time, deliveredAt time.Time, entry models.TimelineEntry) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE orders SET
		    status = $1,
		    otp_verified_at = $2,
		    delivered_at = $3,
		    gross_amount = $4,
		    commission_rate_pct = $5,
		    commission_amount = $6,
		    rider_net_amount = $7,
		    updated_at = $8
		 WHERE id = $9 AND status IN ($10, $11, $12)`,
		models.OrderStatusDelivered, verifiedAt, deliveredAt,
		fin.GrossAmount, fin.CommissionRatePct, fin.CommissionAmount, fin.RiderNetAmount,
		deliveredAt, orderID,
		models.OrderStatusAssigned, models.OrderStatusPickedUp, models.OrderStatusDelivering,
	)
	if err != nil {
		return false, fmt.Errorf("%w: finalizing delivery of order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for delivery of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if err := appendTimeline(tx, orderID, entry); err != nil {
		return false, fmt.Errorf("%w: appending delivery timeline entry: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: committing delivery of order %d: %v", ErrDatabaseError, orderID, err)
	}
	return true, nil
}

func (r *orderRepository) UpdateDeliveryProof(orderID int64, delivery models.Delivery) error {
	result, err := r.db.Exec(
		`UPDATE orders SET
		    proof_photo_url = COALESCE($1, proof_photo_url),
		    proof_recipient_name = COALESCE($2, proof_recipient_name),
		    proof_recipient_phone = COALESCE($3, proof_recipient_phone),
		    proof_note = COALESCE($4, proof_note),
		    updated_at = $5
		 WHERE id = $6`,
		delivery.PhotoURL, delivery.RecipientName, delivery.RecipientPhone, delivery.Note,
		time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating delivery proof for order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for proof update of order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListDeliveredBetween(start, end time.Time) ([]models.Order, error) {
	rows, err := r.db.Query(
		`SELECT `+orderColumns+` FROM orders
		 WHERE status = $1 AND rider_id IS NOT NULL AND delivered_at >= $2 AND delivered_at < $3
		 ORDER BY delivered_at ASC`,
		models.OrderStatusDelivered, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying delivered orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning delivered order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating delivered order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *orderRepository) CountOrdersByStatus(start, end time.Time) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT status, COUNT(*) FROM orders
		 WHERE created_at >= $1 AND created_at < $2
		 GROUP BY status`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: counting orders by status: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: scanning status count: %v", ErrDatabaseError, err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating status count rows: %v", ErrDatabaseError, err)
	}
	return counts, nil
}
