// 包 partition：行政区划表的分区导出与合并装载
// 背景：全量数据按顶层区划代码切成互不重叠的分区文件，导出可并行、装载可选子集；
// 分区之间互为兄弟（父子引用不跨分区），这是并行导出与顺序无关合并的前提。
package partition

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"adcode-db/internal/config"
	"adcode-db/internal/journal"
	"adcode-db/internal/logger"
	"adcode-db/internal/metrics"
	"adcode-db/internal/region"
	"adcode-db/internal/store"
)

// Partitioner：分区导出/装载器；依赖显式注入，不读全局状态
type Partitioner struct {
	st  *store.Store
	cfg *config.Config
	jr  *journal.Journal
}

func New(st *store.Store, cfg *config.Config, jr *journal.Journal) *Partitioner {
	return &Partitioner{st: st, cfg: cfg, jr: jr}
}

// Keys：数据集中出现的全部分区键，升序
func (p *Partitioner) Keys(ctx context.Context) ([]int64, error) {
	return p.st.PartitionKeys(ctx)
}

// FilePath：分区键对应的导出文件路径，命名约定 <key>.csv
func (p *Partitioner) FilePath(key int64) string {
	return filepath.Join(p.cfg.ExportDir, strconv.FormatInt(key, 10)+".csv")
}

// ExportPartition：导出一个分区到 CSV 文件
// 背景：查询不加排序，保留表的物理顺序；装载/重排后的物理顺序即 (rank, code)
// 升序，分区内天然父先于子。
// 约束：每个分区是独立的工作单元，失败可单独重试，不影响兄弟分区。
func (p *Partitioner) ExportPartition(ctx context.Context, key int64) (string, int64, error) {
	t0 := time.Now()
	metrics.DumpPartitionsTotal.Inc()
	path := p.FilePath(key)
	f, err := os.Create(path)
	if err != nil {
		metrics.DumpFailTotal.Inc()
		return "", 0, fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	w := csv.NewWriter(f)
	rows, err := p.st.QueryPartition(ctx, key, func(r *region.Record) error {
		return w.Write(r.Fields())
	})
	if err == nil {
		w.Flush()
		err = w.Error()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close %s: %v", ErrIO, path, cerr)
	}
	if err != nil {
		metrics.DumpFailTotal.Inc()
		// 残留的半成品会让后续 load 读到截断数据，尽力清掉
		_ = os.Remove(path)
		return "", rows, err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.DumpRowsTotal.Add(float64(rows))
	metrics.DumpDurationMs.Observe(float64(dur))
	p.jr.RecordDump(ctx, key, rows)
	logger.L().Debug("dump_partition_done", "key", key, "rows", rows, "duration_ms", dur)
	return path, rows, nil
}

// Failure：单个分区导出失败的描述
type Failure struct {
	Key int64
	Err error
}

// ExportReport：一次全量导出的汇总
type ExportReport struct {
	Files    map[int64]string
	Rows     int64
	Failures []Failure
}

// ExportAll：按固定并行度扇出分区导出
// 背景：分区互不重叠、各写各的文件，工作协程之间无共享可变状态，无需加锁；
// 读一致性由存储侧的快照读保证（导出期间不得并发写）。
// 约束：尽力而为——单个分区失败只收集进报告，不取消在途或排队的兄弟分区。
func (p *Partitioner) ExportAll(ctx context.Context, keys []int64) (*ExportReport, error) {
	if keys == nil {
		var err error
		keys, err = p.Keys(ctx)
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(p.cfg.ExportDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", ErrIO, p.cfg.ExportDir, err)
	}
	workers := p.cfg.Parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(keys) {
		workers = len(keys)
	}
	logger.L().Info("dump_start", "partitions", len(keys), "workers", workers)

	jobs := make(chan int64, len(keys))
	for _, k := range keys {
		jobs <- k
	}
	close(jobs)

	report := &ExportReport{Files: make(map[int64]string, len(keys))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				path, rows, err := p.ExportPartition(ctx, k)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, Failure{Key: k, Err: err})
					logger.L().Error("dump_partition_error", "key", k, "err", err)
				} else {
					report.Files[k] = path
					report.Rows += rows
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Key < report.Failures[j].Key })
	if n := len(report.Failures); n > 0 {
		logger.L().Warn("dump_partial", "ok", len(report.Files), "failed", n)
		return report, fmt.Errorf("%d of %d partition exports failed", n, len(keys))
	}
	logger.L().Info("dump_done", "partitions", len(report.Files), "rows", report.Rows)
	return report, nil
}
