// 包 backup：基于 pg_dump/pg_restore 的全量快照与恢复
// 背景：快照是存储原生的不透明格式，仅用于灾备；分区 CSV 才是日常交换格式
package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"adcode-db/internal/config"
	"adcode-db/internal/logger"
)

// SnapshotPath：固定快照路径 <backupdir>/<table>.dump
func SnapshotPath(cfg *config.Config) string {
	return filepath.Join(cfg.BackupDir, cfg.Table+".dump")
}

func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	logger.L().Debug("backup_exec", "cmd", name)
	if err := cmd.Run(); err != nil {
		// 客户端的退出码与 stderr 一并带回，便于定位权限/连接问题
		return fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// Backup：导出 region 表的自定义格式快照
func Backup(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", cfg.BackupDir, err)
	}
	path := SnapshotPath(cfg)
	err := run(ctx, "pg_dump", "-Fc", "-t", cfg.Table, "-f", path, cfg.PostgresDSN())
	if err != nil {
		return err
	}
	logger.L().Info("backup_done", "path", path)
	return nil
}

// Restore：从快照恢复；--clean --if-exists 让重复恢复幂等
func Restore(ctx context.Context, cfg *config.Config) error {
	path := SnapshotPath(cfg)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	err := run(ctx, "pg_restore", "--clean", "--if-exists", "-d", cfg.PostgresDSN(), path)
	if err != nil {
		return err
	}
	logger.L().Info("restore_done", "path", path)
	return nil
}
