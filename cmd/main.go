// 程序入口：子命令分发；各命令只做配置读取、依赖装配与调用编排
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"adcode-db/internal/backup"
	"adcode-db/internal/check"
	"adcode-db/internal/config"
	"adcode-db/internal/journal"
	"adcode-db/internal/logger"
	"adcode-db/internal/metrics"
	"adcode-db/internal/migrate"
	"adcode-db/internal/partition"
	"adcode-db/internal/store"

	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: adcode-db <command> [region codes...]

commands:
  create    create the region table
  index     create indexes (after load)
  order     rewrite physical order to (rank, code)
  drop      drop the region table
  trunc     truncate the region table
  clean     remove exported partition files
  dump      export partitions to CSV (all, or the given region codes)
  load      bulk load partitions from CSV (all, or the given region codes)
  backup    snapshot the table with pg_dump
  restore   restore the snapshot with pg_restore
  check     run integrity checks (CHECK_REPORT=path writes an xlsx report)
  reload    trunc + load
  reset     drop + create + load + index
  setup     create + load + index + order
  usage     print this help`)
}

// parseKeys：把命令行上的区划代码解析为分区键；非数字即用法错误
func parseKeys(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	keys := make([]int64, 0, len(args))
	for _, a := range args {
		k, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad region code %q", a)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// clean：清空导出目录中的分区文件；目录本身保留
func clean(cfg *config.Config) error {
	entries, err := os.ReadDir(cfg.ExportDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(cfg.ExportDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func loadAll(ctx context.Context, p *partition.Partitioner, keys []int64) error {
	files, err := p.SelectPartitions(keys)
	if err != nil {
		return err
	}
	_, err = p.MergeAndLoad(ctx, files)
	return err
}

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]
	cfg := config.FromEnv()

	// 信号触发上下文取消，让在途操作走正常返回路径，受控资源（暂存文件、
	// 事务）在 defer 中释放；被打断的 order 落库状态未定义，需从快照恢复
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "usage", "help", "-h", "--help":
		usage()
		return
	case "clean":
		if err := clean(cfg); err != nil {
			l.Error("clean_error", "err", err)
			os.Exit(1)
		}
		l.Info("clean_done", "dir", cfg.ExportDir)
		return
	}

	keys, err := parseKeys(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(1)
	}
	if (cmd != "dump" && cmd != "load") && len(keys) > 0 {
		fmt.Fprintf(os.Stderr, "%s takes no region codes\n", cmd)
		os.Exit(1)
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
				l.Error("metrics_listen_error", "err", err)
			}
		}()
	}

	st, err := store.Open(cfg)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
		os.Exit(1)
	}
	jr := journal.New(journal.OpenRedisFromEnv())
	p := partition.New(st, cfg, jr)

	var runErr error
	switch cmd {
	case "create":
		runErr = migrate.EnsureSchema(st.DB(), cfg.Table)
	case "index":
		runErr = migrate.CreateIndexes(st.DB(), cfg.Table)
	case "order":
		runErr = p.Reorder(ctx)
	case "drop":
		runErr = migrate.DropTable(st.DB(), cfg.Table)
	case "trunc":
		runErr = migrate.TruncateTable(st.DB(), cfg.Table)
	case "dump":
		_, runErr = p.ExportAll(ctx, keys)
	case "load":
		runErr = loadAll(ctx, p, keys)
	case "backup":
		runErr = backup.Backup(ctx, cfg)
	case "restore":
		runErr = backup.Restore(ctx, cfg)
	case "check":
		res, err := check.Run(ctx, st, jr)
		if err != nil {
			runErr = err
			break
		}
		for _, v := range res.Violations {
			fmt.Fprintln(os.Stderr, "violation:", v)
		}
		if path := os.Getenv("CHECK_REPORT"); path != "" {
			if err := check.WriteReport(res, path); err != nil {
				runErr = err
				break
			}
			l.Info("check_report_written", "path", path)
		}
		if !res.OK() {
			os.Exit(1)
		}
	case "reload":
		if runErr = migrate.TruncateTable(st.DB(), cfg.Table); runErr == nil {
			runErr = loadAll(ctx, p, nil)
		}
	case "reset":
		steps := []func() error{
			func() error { return migrate.DropTable(st.DB(), cfg.Table) },
			func() error { return migrate.EnsureSchema(st.DB(), cfg.Table) },
			func() error { return loadAll(ctx, p, nil) },
			func() error { return migrate.CreateIndexes(st.DB(), cfg.Table) },
		}
		for _, s := range steps {
			if runErr = s(); runErr != nil {
				break
			}
		}
	case "setup":
		steps := []func() error{
			func() error { return migrate.EnsureSchema(st.DB(), cfg.Table) },
			func() error { return loadAll(ctx, p, nil) },
			func() error { return migrate.CreateIndexes(st.DB(), cfg.Table) },
			func() error { return p.Reorder(ctx) },
		}
		for _, s := range steps {
			if runErr = s(); runErr != nil {
				break
			}
		}
	default:
		usage()
		os.Exit(1)
	}
	if runErr != nil {
		l.Error("command_error", "cmd", cmd, "err", runErr)
		os.Exit(1)
	}
}
