package migrate

import (
	"context"
	"database/sql"

	"amap-kit/internal/logger"
)

// Statements 建表语句，按顺序执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _amap_regeo (
            loc_key TEXT PRIMARY KEY,
            lng DOUBLE PRECISION NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            formatted_address TEXT NOT NULL DEFAULT '',
            province TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            district TEXT NOT NULL DEFAULT '',
            adcode TEXT NOT NULL DEFAULT '',
            township TEXT NOT NULL DEFAULT '',
            raw JSONB NOT NULL,
            queries BIGINT NOT NULL DEFAULT 1,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_amap_regeo_adcode ON _amap_regeo(adcode)`,
	`CREATE TABLE IF NOT EXISTS _amap_ingest_failures (
            loc_key TEXT PRIMARY KEY,
            reason TEXT NOT NULL,
            attempts INT NOT NULL DEFAULT 1,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
}

// 背景：首次运行自动创建逆地理结果表与失败记录表
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
