package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

func New(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get postgres sql db failed: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres failed: %w", err)
	}

	return db, nil
}

// Migrate creates the vector extension and all tables. The two chunk
// tables carry different vector widths, so they are declared by hand
// instead of through AutoMigrate.
func Migrate(db *gorm.DB, openAIDims int) error {
	if openAIDims <= 0 {
		openAIDims = 1536
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension failed: %w", err)
	}
	if err := db.AutoMigrate(&model.Document{}, &model.ChunkSpan{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	chunkTables := []struct {
		name string
		dims int
	}{
		{model.ChunkTableOllama, 1024},
		{model.ChunkTableOpenAI, openAIDims},
	}
	for _, t := range chunkTables {
		ddl := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id SERIAL PRIMARY KEY,
				pdf_id INTEGER NOT NULL REFERENCES pdfs(id) ON DELETE CASCADE,
				chunk TEXT NOT NULL,
				embedding vector(%d)
			)`, t.name, t.dims)
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("create table %s failed: %w", t.name, err)
		}
		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_pdf_id ON %s (pdf_id)", t.name, t.name)
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("create index on %s failed: %w", t.name, err)
		}
	}
	return nil
}
