package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"donation-route-service/internal/domain"
)

type FoodBankSeed struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type DonationSeed struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	WeightKg        float64           `json:"weight_kg"`
	Status          string            `json:"status"`
	DonorID         string            `json:"donor_id"`
	FoodBankID      string            `json:"food_bank_id"`
	PickupAddress   string            `json:"pickup_address"`
	ExpiresAt       *time.Time        `json:"expires_at"`
	FoodType        string            `json:"food_type"`
	Priority        string            `json:"priority"`
	RestaurantTitle string            `json:"restaurant_title"`
	Attributes      map[string]string `json:"attributes"`
}

type SeedFile struct {
	FoodBanks []FoodBankSeed `json:"food_banks"`
	Donations []DonationSeed `json:"donations"`
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(jsonPath string) (*SeedFile, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("seed: parse json: %w", err)
	}

	banks := make(map[string]bool, len(data.FoodBanks))
	for i, fb := range data.FoodBanks {
		if strings.TrimSpace(fb.ID) == "" || strings.TrimSpace(fb.Address) == "" {
			return nil, fmt.Errorf("seed: food bank at index %d: id and address are required", i+1)
		}
		banks[fb.ID] = true
	}

	for i := range data.Donations {
		d := &data.Donations[i]
		if d.ID <= 0 {
			return nil, fmt.Errorf("seed: invalid donation id at index %d: %d", i+1, d.ID)
		}
		if strings.TrimSpace(d.PickupAddress) == "" {
			return nil, fmt.Errorf("seed: donation %d: pickup address cannot be empty", d.ID)
		}
		if d.Status == "" {
			d.Status = domain.StatusPending.String()
		}
		if _, err := domain.ParseDonationStatus(d.Status); err != nil {
			return nil, fmt.Errorf("seed: donation %d: %w", d.ID, err)
		}
		if d.FoodBankID != "" && !banks[d.FoodBankID] {
			return nil, fmt.Errorf("seed: donation %d: unknown food bank %q", d.ID, d.FoodBankID)
		}
	}

	return &data, nil
}

// SeedFromJSON upserts the food banks and donations of a seed file in one transaction.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := LoadSeedFile(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, fb := range data.FoodBanks {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO food_banks (id, name, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			address = EXCLUDED.address;
		`, fb.ID, fb.Name, fb.Address)
		if err != nil {
			return fmt.Errorf("seed: insert food bank %q: %w", fb.ID, err)
		}
	}

	for _, d := range data.Donations {
		attrs := d.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		rawAttrs, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("seed: donation %d: encode attributes: %w", d.ID, err)
		}

		var foodBank sql.NullString
		if d.FoodBankID != "" {
			foodBank = sql.NullString{String: d.FoodBankID, Valid: true}
		}
		var expires sql.NullTime
		if d.ExpiresAt != nil {
			expires = sql.NullTime{Time: *d.ExpiresAt, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO donations (
			id, name, weight_kg, status, donor_id, food_bank_id, pickup_address,
			expires_at, food_type, priority, restaurant_title, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			weight_kg = EXCLUDED.weight_kg,
			status = EXCLUDED.status,
			donor_id = EXCLUDED.donor_id,
			food_bank_id = EXCLUDED.food_bank_id,
			pickup_address = EXCLUDED.pickup_address,
			expires_at = EXCLUDED.expires_at,
			food_type = EXCLUDED.food_type,
			priority = EXCLUDED.priority,
			restaurant_title = EXCLUDED.restaurant_title,
			attributes = EXCLUDED.attributes,
			updated_at = now();
		`, d.ID, d.Name, d.WeightKg, d.Status, d.DonorID, foodBank, d.PickupAddress,
			expires, d.FoodType, d.Priority, d.RestaurantTitle, string(rawAttrs))
		if err != nil {
			return fmt.Errorf("seed: insert donation %d: %w", d.ID, err)
		}
	}

	// Explicit ids leave the serial sequence behind.
	_, err = tx.ExecContext(ctx, `
	SELECT setval(pg_get_serial_sequence('donations', 'id'), (SELECT COALESCE(MAX(id), 1) FROM donations));
	`)
	if err != nil {
		return fmt.Errorf("seed: reset donation id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}
	return nil
}
