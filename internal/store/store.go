// 包 store：提供 region 表的数据访问层，包含分区查询与 COPY 批量装载
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"adcode-db/internal/config"
	"adcode-db/internal/logger"
	"adcode-db/internal/metrics"
	"adcode-db/internal/region"

	"github.com/lib/pq"
)

// Store：数据库访问入口，持有连接池与目标表名
type Store struct {
	db    *sql.DB
	table string
}

// AttachDB：测试与手工注入场景直接挂接现有连接
func AttachDB(db *sql.DB, table string) *Store { return &Store{db: db, table: table} }

// Open：按配置打开数据库连接并设置连接池参数
func Open(cfg *config.Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	return &Store{db: db, table: cfg.Table}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Table() string { return s.table }

// Ping：连接探活；失败归类为存储不可用
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Count：当前行数
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+s.table).Scan(&n)
	if err != nil {
		return 0, Classify(err)
	}
	return n, nil
}

// PartitionKeys：枚举数据集中出现的顶层分区键
// 背景：县级及以上记录的低六位全零，按 code/1e6 去重即得全部分区；
// 每条记录恰好落入其中一个键的子树，覆盖完整且互不重叠。
func (s *Store) PartitionKeys(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT code / 1000000 FROM "+s.table+" WHERE code % 1000000 = 0 ORDER BY 1")
	if err != nil {
		return nil, Classify(err)
	}
	defer rows.Close()
	var keys []int64
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(err)
	}
	logger.L().Debug("partition_keys", "count", len(keys))
	return keys, nil
}

var selectCols = "code, parent, name, level, rank, adcode, post_code, area_code, ur_code, " +
	"municipality, virtual, dummy, longitude, latitude, center, province, city, county, town, village"

func scanRecord(rows *sql.Rows) (*region.Record, error) {
	var r region.Record
	err := rows.Scan(&r.Code, &r.Parent, &r.Name, &r.Level, &r.Rank,
		&r.Adcode, &r.PostCode, &r.AreaCode, &r.URCode,
		&r.Municipality, &r.Virtual, &r.Dummy,
		&r.Longitude, &r.Latitude, &r.Center,
		&r.Province, &r.City, &r.County, &r.Town, &r.Village)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// QueryPartition：流式读取一个分区的全部记录
// 约束：不加 ORDER BY，保持表的物理顺序——导出文件内的先后关系即装载顺序，
// 分区内父先于子由物理顺序（装载/重排后即 rank,code 升序）保证。
func (s *Store) QueryPartition(ctx context.Context, key int64, fn func(*region.Record) error) (int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectCols+" FROM "+s.table+" WHERE code / 1000000 = $1", key)
	if err != nil {
		return 0, Classify(err)
	}
	defer rows.Close()
	var n int64
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return n, err
		}
		if err := fn(r); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, Classify(err)
	}
	return n, nil
}

// RecordSource：装载阶段的记录迭代器；Next 在流结束时返回 io.EOF
type RecordSource interface {
	Next() (*region.Record, error)
}

// BulkLoad：单事务 COPY 语义批量装载
// 背景：COPY 比逐行 INSERT 快一个数量级，但出错粒度粗——任何一行违反约束
// 整个事务回滚，由调用方修正数据后整体重试。
// 约束：追加语义，重复 code 触发唯一约束冲突；不做自动重试。
func (s *Store) BulkLoad(ctx context.Context, src RecordSource) (int64, error) {
	t0 := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Classify(err)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(s.table, region.Columns...))
	if err != nil {
		return 0, Classify(err)
	}
	var n int64
	for {
		r, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			stmt.Close()
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, copyArgs(r)...); err != nil {
			stmt.Close()
			return 0, Classify(err)
		}
		n++
	}
	// COPY 的终止包在空 Exec 时发出，约束冲突多在此处与 Close 暴露
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, Classify(err)
	}
	if err := stmt.Close(); err != nil {
		return 0, Classify(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, Classify(err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.LoadRowsTotal.Add(float64(n))
	metrics.LoadDurationMs.Observe(float64(dur))
	logger.L().Info("bulk_load_done", "rows", n, "duration_ms", dur)
	return n, nil
}

// copyArgs：记录转 COPY 参数；可空字段用 nil 表达 NULL
func copyArgs(r *region.Record) []interface{} {
	args := make([]interface{}, 0, len(region.Columns))
	args = append(args, r.Code)
	args = append(args, nullableInt(r.Parent))
	args = append(args, r.Name, r.Level, r.Rank)
	args = append(args, nullable(r.Adcode), nullable(r.PostCode), nullable(r.AreaCode), nullable(r.URCode))
	args = append(args, r.Municipality, r.Virtual, r.Dummy)
	args = append(args, nullableFloat(r.Longitude), nullableFloat(r.Latitude))
	args = append(args, nullable(r.Center))
	args = append(args, nullable(r.Province), nullable(r.City), nullable(r.County), nullable(r.Town), nullable(r.Village))
	return args
}

func nullable(v sql.NullString) interface{} {
	if !v.Valid {
		return nil
	}
	return v.String
}

func nullableInt(v sql.NullInt64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

func nullableFloat(v sql.NullFloat64) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// Upsert：按 code 幂等写入单条记录，供拉取工具使用
func (s *Store) Upsert(ctx context.Context, r *region.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO `+s.table+` (`+selectCols+`)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        ON CONFLICT (code) DO UPDATE SET
            parent=EXCLUDED.parent, name=EXCLUDED.name, level=EXCLUDED.level, rank=EXCLUDED.rank,
            adcode=EXCLUDED.adcode, post_code=EXCLUDED.post_code, area_code=EXCLUDED.area_code,
            ur_code=EXCLUDED.ur_code, municipality=EXCLUDED.municipality, virtual=EXCLUDED.virtual,
            dummy=EXCLUDED.dummy, longitude=EXCLUDED.longitude, latitude=EXCLUDED.latitude,
            center=EXCLUDED.center, province=EXCLUDED.province, city=EXCLUDED.city,
            county=EXCLUDED.county, town=EXCLUDED.town, village=EXCLUDED.village`,
		copyArgs(r)...)
	if err != nil {
		return Classify(err)
	}
	return nil
}

// Reorder：按 (rank, code) 升序重排物理存储
// 背景：装载顺序决定物理顺序；重排后导出文件与全量扫描都得到确定的先后关系。
// 约束：单事务内 暂存表复制 → TRUNCATE → 回插；暂存表 ON COMMIT DROP，
// 成败都不泄漏存储。逻辑幂等：重复执行得到相同内容与相同物理顺序。
func (s *Store) Reorder(ctx context.Context) error {
	t0 := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer tx.Rollback()
	stmts := []string{
		"CREATE TEMP TABLE region_reorder ON COMMIT DROP AS SELECT * FROM " + s.table + " ORDER BY rank, code",
		"TRUNCATE " + s.table,
		"INSERT INTO " + s.table + " SELECT * FROM region_reorder ORDER BY rank, code",
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return Classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.ReorderDurationMs.Observe(float64(dur))
	logger.L().Info("reorder_done", "duration_ms", dur)
	return nil
}
