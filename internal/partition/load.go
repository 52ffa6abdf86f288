package partition

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"adcode-db/internal/logger"
	"adcode-db/internal/region"
)

// SelectPartitions：把请求的分区键解析为有序文件序列
// 背景：合并步骤按文件顺序直接拼接成一条装载流；本域内分区互为兄弟，顺序
// 并不影响引用完整性，但显式按键升序让重复装载可复现、诊断可对照。
// 约束：keys 为空时列举导出目录下全部 <key>.csv；显式给出的键缺文件即错，
// 错误中逐一点名缺失的键。
func (p *Partitioner) SelectPartitions(requested []int64) ([]string, error) {
	keys := requested
	if len(keys) == 0 {
		entries, err := os.ReadDir(p.cfg.ExportDir)
		if err != nil {
			return nil, fmt.Errorf("%w: read dir %s: %v", ErrIO, p.cfg.ExportDir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasSuffix(name, ".csv") {
				continue
			}
			k, err := strconv.ParseInt(strings.TrimSuffix(name, ".csv"), 10, 64)
			if err != nil {
				continue
			}
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("%w: no partition files under %s", ErrNotFound, p.cfg.ExportDir)
		}
	} else {
		var missing []string
		for _, k := range keys {
			if _, err := os.Stat(p.FilePath(k)); err != nil {
				missing = append(missing, strconv.FormatInt(k, 10))
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(missing, ","))
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	files := make([]string, 0, len(keys))
	seen := make(map[int64]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		files = append(files, p.FilePath(k))
	}
	return files, nil
}

// LoadResult：一次合并装载的结果
type LoadResult struct {
	Files    int
	Rows     int64
	Duration time.Duration
}

// csvSource：把拼接后的 CSV 流适配成装载迭代器
type csvSource struct {
	r *csv.Reader
}

func (s *csvSource) Next() (*region.Record, error) {
	fields, err := s.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read staging: %v", ErrIO, err)
	}
	return region.FromFields(fields)
}

// MergeAndLoad：按给定顺序拼接分区文件并一次性批量装载
// 背景：各文件内部行序在导出时已保留表的物理顺序，分区内父先于子成立，
// 拼接后单次 COPY 即可满足立即检查的引用约束。
// 约束：暂存文件是受控资源，无论成功、失败还是上下文取消都在返回前删除；
// 装载整体成败，存储拒绝（如父记录缺失、code 重复）时不做分区级重试，
// 由调用方修正数据后整体重来。
func (p *Partitioner) MergeAndLoad(ctx context.Context, files []string) (*LoadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: empty file list", ErrNotFound)
	}
	t0 := time.Now()
	staging, err := os.CreateTemp("", "region-load-*.csv")
	if err != nil {
		return nil, fmt.Errorf("%w: create staging: %v", ErrIO, err)
	}
	stagingPath := staging.Name()
	defer func() {
		staging.Close()
		if err := os.Remove(stagingPath); err != nil && !os.IsNotExist(err) {
			logger.L().Warn("staging_remove_error", "path", stagingPath, "err", err)
		}
	}()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
		}
		_, cErr := io.Copy(staging, src)
		src.Close()
		if cErr != nil {
			return nil, fmt.Errorf("%w: concat %s: %v", ErrIO, path, cErr)
		}
	}
	if _, err := staging.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: rewind staging: %v", ErrIO, err)
	}

	rd := csv.NewReader(staging)
	rd.FieldsPerRecord = len(region.Columns)
	rows, err := p.st.BulkLoad(ctx, &csvSource{r: rd})
	if err != nil {
		logger.L().Error("load_error", "files", len(files), "err", err)
		return nil, err
	}
	res := &LoadResult{Files: len(files), Rows: rows, Duration: time.Since(t0)}
	p.jr.RecordLoad(ctx, res.Files, res.Rows)
	logger.L().Info("load_done", "files", res.Files, "rows", res.Rows, "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// Reorder：委托存储层按 (rank, code) 重排物理顺序并记录流水
// 约束：不得与 ExportAll 或另一次 Reorder/MergeAndLoad 并发；本包不实现
// 互斥，破坏性操作的串行化由调用方负责。
func (p *Partitioner) Reorder(ctx context.Context) error {
	if err := p.st.Reorder(ctx); err != nil {
		return err
	}
	p.jr.RecordReorder(ctx)
	return nil
}
