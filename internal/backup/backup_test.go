package backup

import (
	"context"
	"path/filepath"
	"testing"

	"adcode-db/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPath(t *testing.T) {
	cfg := &config.Config{Table: "region", BackupDir: "data/backup"}
	assert.Equal(t, filepath.Join("data", "backup", "region.dump"), SnapshotPath(cfg))
}

// 快照缺失时直接报错，不调用客户端
func TestRestoreMissingSnapshot(t *testing.T) {
	cfg := &config.Config{Table: "region", BackupDir: t.TempDir()}
	err := Restore(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region.dump")
}
