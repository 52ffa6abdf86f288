// 包 migrate：region 表的 DDL 集合（建表、索引、清空、删除）
package migrate

import (
	"database/sql"
	"fmt"

	"adcode-db/internal/logger"
)

// EnsureSchema：建表
// 背景：code 为 12 位区划代码主键；parent 自引用外键保证父记录先于子记录存在；
// center 使用内建 point 类型，文本形式 "(lng,lat)" 即导出文件携带的表示。
// 约束：使用 IF NOT EXISTS，重复执行幂等；仅创建最小必需结构，索引单独建。
func EnsureSchema(db *sql.DB, table string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            code BIGINT PRIMARY KEY,
            parent BIGINT REFERENCES %s(code),
            name TEXT NOT NULL,
            level TEXT NOT NULL,
            rank SMALLINT NOT NULL CHECK (rank BETWEEN 0 AND 5),
            adcode TEXT,
            post_code TEXT,
            area_code TEXT,
            ur_code TEXT,
            municipality BOOLEAN NOT NULL DEFAULT FALSE,
            virtual BOOLEAN NOT NULL DEFAULT FALSE,
            dummy BOOLEAN NOT NULL DEFAULT FALSE,
            longitude DOUBLE PRECISION,
            latitude DOUBLE PRECISION,
            center POINT,
            province TEXT,
            city TEXT,
            county TEXT,
            town TEXT,
            village TEXT
        )`, table, table),
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Info("schema_done", "table", table)
	return nil
}

// CreateIndexes：建索引
// 背景：parent 索引服务孤儿检测与层级查询；(rank, code) 服务重排与有序扫描；
// center 的 gist 索引服务就近检索。建索引放在装载之后，避免拖慢 COPY。
func CreateIndexes(db *sql.DB, table string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_parent ON %s(parent)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_rank_code ON %s(rank, code)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_center ON %s USING gist(center)`, table, table),
	}
	for i, s := range stmts {
		logger.L().Debug("index_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Info("index_done", "table", table)
	return nil
}

// DropTable：删表；IF EXISTS 保证幂等
func DropTable(db *sql.DB, table string) error {
	if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return err
	}
	logger.L().Info("drop_done", "table", table)
	return nil
}

// TruncateTable：清空数据保留结构，回到仅有 schema 的状态
func TruncateTable(db *sql.DB, table string) error {
	if _, err := db.Exec("TRUNCATE " + table); err != nil {
		return err
	}
	logger.L().Info("trunc_done", "table", table)
	return nil
}
