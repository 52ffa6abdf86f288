// 包 check：数据集完整性巡检
// 背景：装载与重排都假定 rank/level 一致、父引用闭合、分区覆盖完整；
// 巡检把这些前提变成可执行的检查项，违规即非零退出。
package check

import (
	"context"
	"fmt"

	"adcode-db/internal/journal"
	"adcode-db/internal/logger"
	"adcode-db/internal/metrics"
	"adcode-db/internal/region"
	"adcode-db/internal/store"
)

// LevelCount：某一层级的行数统计
type LevelCount struct {
	Level string
	Rank  int
	Count int64
}

// PartitionCount：某一分区键的行数统计，Journal 为上次导出记录的行数（-1 表示无记录）
type PartitionCount struct {
	Key     int64
	Count   int64
	Journal int64
}

// Result：一次巡检的全部产出
type Result struct {
	Total      int64
	Levels     []LevelCount
	Partitions []PartitionCount
	// Violations：人读的违规描述；空即通过
	Violations []string
}

func (r *Result) OK() bool { return len(r.Violations) == 0 }

func (r *Result) violate(kind, format string, args ...interface{}) {
	metrics.CheckViolationsTotal.WithLabelValues(kind).Inc()
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// Run：执行全部检查项
// 检查项：rank 与 level 冗余编码一致；parent 引用闭合；每条记录的顶层
// 标记存在（分区覆盖完整）；与流水中上次导出行数对账（仅告警级）。
func Run(ctx context.Context, st *store.Store, jr *journal.Journal) (*Result, error) {
	res := &Result{}
	db := st.DB()
	table := st.Table()

	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table).Scan(&res.Total); err != nil {
		return nil, store.Classify(err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT level, rank, COUNT(1) FROM "+table+" GROUP BY level, rank ORDER BY rank, level")
	if err != nil {
		return nil, store.Classify(err)
	}
	for rows.Next() {
		var lc LevelCount
		if err := rows.Scan(&lc.Level, &lc.Rank, &lc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		res.Levels = append(res.Levels, lc)
		if !region.ValidLevel(lc.Level, lc.Rank) {
			res.violate("rank_level", "level %q paired with rank %d on %d rows", lc.Level, lc.Rank, lc.Count)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, store.Classify(err)
	}

	var orphans int64
	err = db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table+` r
        WHERE r.parent IS NOT NULL
          AND NOT EXISTS (SELECT 1 FROM `+table+` p WHERE p.code = r.parent)`).Scan(&orphans)
	if err != nil {
		return nil, store.Classify(err)
	}
	if orphans > 0 {
		res.violate("orphan_parent", "%d rows reference a missing parent", orphans)
	}

	// 覆盖性：记录的顶层标记（低六位清零的 code）必须存在于数据集中
	var uncovered int64
	err = db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table+` r
        WHERE NOT EXISTS (SELECT 1 FROM `+table+` t WHERE t.code = (r.code / 1000000) * 1000000)`).Scan(&uncovered)
	if err != nil {
		return nil, store.Classify(err)
	}
	if uncovered > 0 {
		res.violate("partition_coverage", "%d rows have no top-level marker for their partition", uncovered)
	}

	journalRows, jerr := jr.PartitionRows(ctx)
	if jerr != nil {
		logger.L().Warn("check_journal_error", "err", jerr)
	}
	rows, err = db.QueryContext(ctx,
		"SELECT code / 1000000 AS k, COUNT(1) FROM "+table+" GROUP BY k ORDER BY k")
	if err != nil {
		return nil, store.Classify(err)
	}
	for rows.Next() {
		pc := PartitionCount{Journal: -1}
		if err := rows.Scan(&pc.Key, &pc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		if j, ok := journalRows[pc.Key]; ok {
			pc.Journal = j
			if j != pc.Count {
				logger.L().Warn("check_partition_drift", "key", pc.Key, "db", pc.Count, "journal", j)
			}
		}
		res.Partitions = append(res.Partitions, pc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, store.Classify(err)
	}

	logger.L().Info("check_done", "total", res.Total, "violations", len(res.Violations))
	return res, nil
}
