// 包 config：集中读取环境变量生成显式配置结构
// 背景：连接目标、并行度与目录路径曾散落在各命令中，统一收敛为一个结构体
// 约束：仅在进程启动时读取环境；运行期不重新加载
package config

import (
	"os"
	"strconv"
)

// Config：运维工具的全部可配置项，构造后只读
type Config struct {
	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string
	PGSSLMode  string

	// Table：行政区划表名；保留可配置以便灰度切换影子表
	Table string

	// ExportDir：分区 CSV 导出目录；BackupDir：快照目录
	ExportDir string
	BackupDir string

	// Parallelism：dump 阶段最大并行分区数
	Parallelism int

	MaxOpenConns int
	MaxIdleConns int
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// FromEnv：从环境变量构造配置，缺省值与部署约定一致
func FromEnv() *Config {
	return &Config{
		PGHost:       envOr("PG_HOST", "localhost"),
		PGPort:       envOr("PG_PORT", "5432"),
		PGUser:       envOr("PG_USER", "postgres"),
		PGPassword:   os.Getenv("PG_PASSWORD"),
		PGDatabase:   envOr("PG_DB", "region"),
		PGSSLMode:    envOr("PG_SSLMODE", "disable"),
		Table:        envOr("REGION_TABLE", "region"),
		ExportDir:    envOr("EXPORT_DIR", "data/export"),
		BackupDir:    envOr("BACKUP_DIR", "data/backup"),
		Parallelism:  envIntOr("DUMP_WORKERS", 16),
		MaxOpenConns: envIntOr("PG_MAX_OPEN_CONNS", 50),
		MaxIdleConns: envIntOr("PG_MAX_IDLE_CONNS", 25),
	}
}

// PostgresDSN：拼接连接串；密码为空时省略冒号段
func (c *Config) PostgresDSN() string {
	dsn := "postgres://" + c.PGUser
	if c.PGPassword != "" {
		dsn += ":" + c.PGPassword
	}
	dsn += "@" + c.PGHost + ":" + c.PGPort + "/" + c.PGDatabase + "?sslmode=" + c.PGSSLMode
	return dsn
}
