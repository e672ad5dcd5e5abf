package postgresql

import (
	"context"
	"fmt"

	"github.com/aniladanir/retry"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the db session, retrying while the server is unreachable,
// and auto migrates given models
func Initialize(ctx context.Context, connStr string, maxRetry int, models []any) (*gorm.DB, error) {
	retrier, err := retry.New(retry.WithMaxAttemps(maxRetry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize retrier: %w", err)
	}

	var (
		db      *gorm.DB
		openErr error
	)
	connect := func(attempt int) (terminate bool) {
		db, openErr = gorm.Open(postgres.Open(connStr), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if openErr != nil {
			return false
		}

		sqlDb, err := db.DB()
		if err != nil {
			openErr = err
			return false
		}
		if openErr = sqlDb.PingContext(ctx); openErr != nil {
			return false
		}
		return true
	}

	if ok := <-retrier.Retry(ctx, connect, true); !ok {
		if openErr == nil {
			openErr = ctx.Err()
		}
		return nil, fmt.Errorf("failed to connect to postgres: %w", openErr)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate models: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDb, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDb.Close()
}
