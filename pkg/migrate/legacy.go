package migrate

import (
	"context"
	"fmt"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

// legacyPatches are idempotent statements healing schema drift left by
// databases that predate the goose baseline. Every statement must be
// safe to run on every boot.
var legacyPatches = []string{
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS sizes_stock jsonb`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS video_url text`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS discount_percent numeric(5,2)`,
	`ALTER TABLE products ADD COLUMN IF NOT EXISTS low_stock_threshold integer NOT NULL DEFAULT 5`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS state text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS country text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS payment_method text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS payment_provider text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS payment_sender_number text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS transaction_id text`,
	`ALTER TABLE orders ADD COLUMN IF NOT EXISTS payment_status text NOT NULL DEFAULT 'PENDING'`,
	`ALTER TABLE wishlist_items ADD COLUMN IF NOT EXISTS wishlist_id uuid`,
	`ALTER TABLE wishlist_items ALTER COLUMN user_id DROP NOT NULL`,
	`UPDATE wishlist_items wi
	 SET wishlist_id = w.id
	 FROM wishlists w
	 WHERE wi.wishlist_id IS NULL AND wi.user_id = w.user_id`,
	`ALTER TABLE hero_banners ADD COLUMN IF NOT EXISTS sort_order integer NOT NULL DEFAULT 0`,
	`ALTER TABLE hero_banners ADD COLUMN IF NOT EXISTS link_url text`,
	// Older databases carry a lowercase status check. Rebuild it against
	// the uppercase enum so legacy rows keep loading.
	`ALTER TABLE orders DROP CONSTRAINT IF EXISTS orders_status_check`,
	`ALTER TABLE orders ADD CONSTRAINT orders_status_check
	 CHECK (UPPER(status) IN ('PENDING','CONFIRMED','PACKED','OUT_FOR_DELIVERY','SHIPPED','DELIVERED','CANCELLED'))`,
	`ALTER TABLE orders DROP CONSTRAINT IF EXISTS orders_payment_status_check`,
	`ALTER TABLE orders ADD CONSTRAINT orders_payment_status_check
	 CHECK (UPPER(payment_status) IN ('PENDING','PAID','REFUNDED'))`,
}

// PatchLegacyBestEffort runs the legacy patches and logs on failure
// instead of propagating it. The per-request schema repair path retries
// later, so boot continues either way.
func PatchLegacyBestEffort(ctx context.Context, client *db.Client, logg *logger.Logger) {
	if err := EnsureLegacySchema(ctx, client, logg); err != nil && logg != nil {
		logg.Error(ctx, "failed to patch legacy schema", err)
	}
}

// EnsureLegacySchema applies startup patches for databases created
// before the migration baseline existed.
func EnsureLegacySchema(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	for _, stmt := range legacyPatches {
		if err := client.Exec(ctx, stmt).Error; err != nil {
			return fmt.Errorf("legacy schema patch failed: %w", err)
		}
	}
	if logg != nil {
		logg.Info(ctx, "legacy schema patches applied")
	}
	return nil
}
