package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type SchemaRepository struct {
	DB *gorm.DB
}

func NewSchemaRepository(db *gorm.DB) *SchemaRepository {
	return &SchemaRepository{DB: db}
}

func (r *SchemaRepository) ColumnExists(ctx context.Context, table, column string) bool {
	return r.DB.WithContext(ctx).Migrator().HasColumn(table, column)
}

func (r *SchemaRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
