// 包 store: 逆地理结果的 PostgreSQL 持久化，按 6 位小数坐标去重
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"amap-kit/internal/amap"
	"amap-kit/internal/logger"
	"amap-kit/internal/migrate"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema: 建表
func (s *Store) EnsureSchema(ctx context.Context) error { return migrate.EnsureSchema(ctx, s.db) }

// Row: 一条待写入的逆地理结果
type Row struct {
	Key              string
	Lng, Lat         float64
	FormattedAddress string
	Province         string
	City             string
	District         string
	Adcode           string
	Township         string
	Raw              []byte
}

// RowFromReGeo: 将解码后的逆地理结果映射为数据库行；loc 为请求坐标，Key 即其线格式
func RowFromReGeo(loc amap.Location, d amap.ReGeoCodeData) (Row, error) {
	raw, err := json.Marshal(d.Record)
	if err != nil {
		return Row{}, err
	}
	ac := d.AddressComponent()
	return Row{
		Key:              loc.String(),
		Lng:              loc.Lng,
		Lat:              loc.Lat,
		FormattedAddress: d.FormattedAddress(),
		Province:         ac.Province(),
		City:             ac.City(),
		District:         ac.District(),
		Adcode:           ac.Adcode(),
		Township:         ac.Township(),
		Raw:              raw,
	}, nil
}

const upsertSQL = `INSERT INTO _amap_regeo(loc_key, lng, lat, formatted_address, province, city, district, adcode, township, raw)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (loc_key) DO UPDATE SET formatted_address=EXCLUDED.formatted_address, province=EXCLUDED.province,
        city=EXCLUDED.city, district=EXCLUDED.district, adcode=EXCLUDED.adcode, township=EXCLUDED.township,
        raw=EXCLUDED.raw, queries=_amap_regeo.queries+1, updated_at=now()`

// UpsertReGeo: 单事务写入一批结果；同坐标重复写入时覆盖字段并递增查询计数
func (s *Store) UpsertReGeo(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Key, r.Lng, r.Lat, r.FormattedAddress, r.Province, r.City, r.District, r.Adcode, r.Township, r.Raw); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("db_upsert_regeo", "rows", len(rows))
	return nil
}

// RecordFailure: 记录失败坐标，便于之后重跑
func (s *Store) RecordFailure(ctx context.Context, key, reason string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO _amap_ingest_failures(loc_key, reason) VALUES($1,$2)
        ON CONFLICT (loc_key) DO UPDATE SET reason=EXCLUDED.reason, attempts=_amap_ingest_failures.attempts+1, updated_at=now()`, key, reason)
	return err
}

// Known: 坐标已有结果时返回 true，用于跳过重复查询
func (s *Store) Known(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM _amap_regeo WHERE loc_key=$1", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
