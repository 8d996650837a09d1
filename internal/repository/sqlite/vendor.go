package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

type vendorRepo struct {
	store *Store
}

func (r *vendorRepo) Upsert(ctx context.Context, v *models.Vendor) error {
	if v.VendorID == "" || v.Name == "" {
		return fmt.Errorf("vendor id and name are required: %w", common.ErrInvalidInput)
	}
	approved := 0
	if v.IsApproved {
		approved = 1
	}
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO vendors (vendor_id, vendor_name, email, phone, address, is_approved)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (vendor_id) DO UPDATE SET
			vendor_name = excluded.vendor_name,
			email       = excluded.email,
			phone       = excluded.phone,
			address     = excluded.address,
			is_approved = excluded.is_approved`,
		v.VendorID, v.Name, v.Email, v.Phone, v.Address, approved)
	if err != nil {
		return fmt.Errorf("upsert vendor: %w", err)
	}
	return nil
}

func (r *vendorRepo) FindExact(ctx context.Context, name string) (*models.Vendor, error) {
	return r.findOne(ctx, `
		SELECT vendor_id, vendor_name, email, phone, address, is_approved
		FROM vendors WHERE vendor_name = ? ORDER BY id LIMIT 1`, name)
}

func (r *vendorRepo) FindPartial(ctx context.Context, substring string) (*models.Vendor, error) {
	return r.findOne(ctx, `
		SELECT vendor_id, vendor_name, email, phone, address, is_approved
		FROM vendors WHERE instr(lower(vendor_name), lower(?)) > 0
		ORDER BY id LIMIT 1`, substring)
}

func (r *vendorRepo) findOne(ctx context.Context, query, arg string) (*models.Vendor, error) {
	var (
		v        models.Vendor
		approved int
	)
	err := r.store.db.QueryRowContext(ctx, query, arg).Scan(
		&v.VendorID, &v.Name, &v.Email, &v.Phone, &v.Address, &approved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vendor %q: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query vendor: %w", err)
	}
	v.IsApproved = approved != 0
	return &v, nil
}
