package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"donation-route-service/internal/domain"
	"donation-route-service/internal/platform/obs"
	"donation-route-service/internal/ports"

	"go.uber.org/zap"
)

// Postgres-backed implementation of the DonationRepository port.
type PostgresDonationRepository struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresDonationRepository(db *sql.DB, logger *zap.Logger) *PostgresDonationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresDonationRepository{DB: db, logger: logger}
}

const selectDonations = `
	SELECT
		d.id,
		d.name,
		d.weight_kg,
		d.status,
		d.donor_id,
		COALESCE(d.food_bank_id, ''),
		d.pickup_address,
		COALESCE(fb.address, ''),
		d.expires_at,
		d.food_type,
		d.priority,
		d.restaurant_title,
		d.attributes
	FROM donations d
	LEFT JOIN food_banks fb ON fb.id = d.food_bank_id`

// List returns donations matching filter, ordered by id.
func (r *PostgresDonationRepository) List(
	ctx context.Context,
	filter ports.DonationFilter,
) (_ []*domain.Donation, err error) {
	defer obs.Time(ctx, r.logger, "donations.list")(&err)

	if r.DB == nil {
		return nil, errors.New("donation repository: DB is nil")
	}

	var (
		where []string
		args  []any
	)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s.String()
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("d.status = ANY($%d::text[])", len(args)))
	}
	if filter.FoodBankID != "" {
		args = append(args, filter.FoodBankID)
		where = append(where, fmt.Sprintf("d.food_bank_id = $%d", len(args)))
	}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		where = append(where, fmt.Sprintf("d.id = ANY($%d::bigint[])", len(args)))
	}

	q := selectDonations
	if len(where) > 0 {
		q += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\tORDER BY d.id;"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: query donations table: %w", err)
	}
	defer rows.Close()

	donations := make([]*domain.Donation, 0, 64)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("list donations: %w", err)
		}
		donations = append(donations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list donations: row iteration: %w", err)
	}

	return donations, nil
}

func (r *PostgresDonationRepository) Get(ctx context.Context, id int64) (_ *domain.Donation, err error) {
	defer obs.Time(ctx, r.logger, "donations.get")(&err)

	if r.DB == nil {
		return nil, errors.New("donation repository: DB is nil")
	}

	row := r.DB.QueryRowContext(ctx, selectDonations+"\n\tWHERE d.id = $1;", id)
	d, err := scanDonation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get donation %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get donation %d: %w", id, err)
	}
	return d, nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *PostgresDonationRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.DonationStatus,
) (err error) {
	defer obs.Time(ctx, r.logger, "donations.updateStatus")(&err)

	if r.DB == nil {
		return errors.New("donation repository: DB is nil")
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("update donation %d: %w: %s -> %s", id, domain.ErrInvalidTransition, from, to)
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE donations
	SET status = $3,
		updated_at = now()
	WHERE id = $1 AND status = $2;
	`, id, from.String(), to.String())
	if err != nil {
		return fmt.Errorf("update donation %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update donation %d: rows affected: %w", id, err)
	}
	if n == 1 {
		return nil
	}

	var current string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM donations WHERE id = $1;`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update donation %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update donation %d: read current status: %w", id, err)
	}
	return fmt.Errorf("update donation %d: %w: status is %s, expected %s", id, domain.ErrConflict, current, from)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*domain.Donation, error) {
	var (
		d         domain.Donation
		status    string
		expiresAt sql.NullTime
		attrs     []byte
	)
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.WeightKg,
		&status,
		&d.DonorID,
		&d.FoodBankID,
		&d.PickupAddress,
		&d.DestinationAddress,
		&expiresAt,
		&d.FoodType,
		&d.Priority,
		&d.RestaurantTitle,
		&attrs,
	)
	if err != nil {
		return nil, err
	}

	d.Status, err = domain.ParseDonationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("donation %d: %w", d.ID, err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time.In(time.UTC)
		d.ExpiresAt = &t
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &d.Attributes); err != nil {
			return nil, fmt.Errorf("donation %d: decode attributes: %w", d.ID, err)
		}
	}
	return &d, nil
}
