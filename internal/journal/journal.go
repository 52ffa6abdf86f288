// 包 journal：运维操作流水，写入 Redis 供值班巡检查看
// 背景：dump/load/reorder 多由定时任务触发，进程短命，最近一次执行情况需要
// 落在外部存储；沿用在线服务的 Redis 实例，未配置时整体禁用。
// 约束：流水是尽力而为的旁路信息，写入失败只记日志，绝不影响主操作结果。
package journal

import (
	"context"
	"strconv"
	"time"

	"adcode-db/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keyLastDump      = "adcodedb:last_dump"
	keyLastLoad      = "adcodedb:last_load"
	keyLastReorder   = "adcodedb:last_reorder"
	keyPartitionRows = "adcodedb:partition_rows"
)

// Journal：操作流水写入器；rdb 为 nil 时所有方法为空操作
type Journal struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Journal { return &Journal{rdb: rdb} }

func (j *Journal) enabled() bool { return j != nil && j.rdb != nil }

// RecordDump：记录一个分区导出完成的时间与行数
func (j *Journal) RecordDump(ctx context.Context, key int64, rows int64) {
	if !j.enabled() {
		return
	}
	pipe := j.rdb.Pipeline()
	pipe.Set(ctx, keyLastDump, time.Now().Format(time.RFC3339), 0)
	pipe.HSet(ctx, keyPartitionRows, strconv.FormatInt(key, 10), rows)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.L().Warn("journal_dump_error", "key", key, "err", err)
	}
}

// RecordLoad：记录一次装载的文件数与总行数
func (j *Journal) RecordLoad(ctx context.Context, files int, rows int64) {
	if !j.enabled() {
		return
	}
	err := j.rdb.HSet(ctx, keyLastLoad,
		"at", time.Now().Format(time.RFC3339),
		"files", files,
		"rows", rows).Err()
	if err != nil {
		logger.L().Warn("journal_load_error", "err", err)
	}
}

// RecordReorder：记录最近一次物理重排时间
func (j *Journal) RecordReorder(ctx context.Context) {
	if !j.enabled() {
		return
	}
	if err := j.rdb.Set(ctx, keyLastReorder, time.Now().Format(time.RFC3339), 0).Err(); err != nil {
		logger.L().Warn("journal_reorder_error", "err", err)
	}
}

// PartitionRows：读取最近一次导出的分区行数，供巡检对账
func (j *Journal) PartitionRows(ctx context.Context) (map[int64]int64, error) {
	if !j.enabled() {
		return nil, nil
	}
	m, err := j.rdb.HGetAll(ctx, keyPartitionRows).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(m))
	for k, v := range m {
		key, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		rows, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[key] = rows
	}
	return out, nil
}
