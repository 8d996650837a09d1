package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
)

type vendorRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewVendorRepository(pool *pgxpool.Pool, log *slog.Logger) repository.VendorRepository {
	if log == nil {
		log = slog.Default()
	}
	return &vendorRepo{pool: pool, log: log}
}

func (r *vendorRepo) Upsert(ctx context.Context, v *models.Vendor) error {
	if v.VendorID == "" || v.Name == "" {
		return fmt.Errorf("vendor id and name are required: %w", common.ErrInvalidInput)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vendors (vendor_id, vendor_name, email, phone, address, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vendor_id) DO UPDATE SET
			vendor_name = EXCLUDED.vendor_name,
			email       = EXCLUDED.email,
			phone       = EXCLUDED.phone,
			address     = EXCLUDED.address,
			is_approved = EXCLUDED.is_approved`,
		v.VendorID, v.Name, v.Email, v.Phone, v.Address, v.IsApproved)
	if err != nil {
		r.log.Error("vendor upsert failed", "vendor_id", v.VendorID, "err", err)
		return fmt.Errorf("upsert vendor: %w", err)
	}
	return nil
}

func (r *vendorRepo) FindExact(ctx context.Context, name string) (*models.Vendor, error) {
	return r.findOne(ctx, `
		SELECT vendor_id, vendor_name, email, phone, address, is_approved
		FROM vendors WHERE vendor_name = $1 ORDER BY id LIMIT 1`, name)
}

func (r *vendorRepo) FindPartial(ctx context.Context, substring string) (*models.Vendor, error) {
	return r.findOne(ctx, `
		SELECT vendor_id, vendor_name, email, phone, address, is_approved
		FROM vendors WHERE vendor_name ILIKE '%' || $1 || '%' ORDER BY id LIMIT 1`, substring)
}

func (r *vendorRepo) findOne(ctx context.Context, query, arg string) (*models.Vendor, error) {
	var v models.Vendor
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&v.VendorID, &v.Name, &v.Email, &v.Phone, &v.Address, &v.IsApproved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("vendor %q: %w", arg, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query vendor: %w", err)
	}
	return &v, nil
}
