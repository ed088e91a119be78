package migrate_test

import (
	"context"
	"io"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/migrate"
)

func TestPatchLegacyBestEffortSwallowsFailure(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// None of the patched tables exist, so every statement fails. The
	// helper must log and return instead of escalating.
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	migrate.PatchLegacyBestEffort(context.Background(), db.NewFromGorm(conn), logg)
}
