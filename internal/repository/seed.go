package repository

import (
	"context"
	"fmt"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

// SeedVendors is the starter reference dataset for vendor validation.
var SeedVendors = []models.Vendor{
	{VendorID: "ACME001", Name: "Acme Corporation", Email: "billing@acme.com", Phone: "555-0100", Address: "123 Industrial Way", IsApproved: true},
	{VendorID: "GTS002", Name: "Global Tech Solutions", Email: "accounts@globaltech.com", Phone: "555-0200", Address: "456 Innovation Drive", IsApproved: true},
	{VendorID: "BSI003", Name: "Best Services Inc", Email: "billing@bestservices.com", Phone: "555-0300", Address: "789 Commerce Street", IsApproved: true},
	{VendorID: "PSC004", Name: "Premium Supplies Co", Email: "ar@premiumsupplies.com", Phone: "555-0400", Address: "321 Supply Chain Blvd", IsApproved: true},
	{VendorID: "RPL005", Name: "Reliable Partners LLC", Email: "finance@reliablepartners.com", Phone: "555-0500", Address: "654 Partnership Lane", IsApproved: true},
}

// EnsureSeedVendors upserts the starter vendors; safe to run repeatedly.
func EnsureSeedVendors(ctx context.Context, vendors VendorRepository) error {
	for i := range SeedVendors {
		v := SeedVendors[i]
		if err := vendors.Upsert(ctx, &v); err != nil {
			return fmt.Errorf("seed vendor %s: %w", v.VendorID, err)
		}
	}
	return nil
}
