// 包 region：行政区划记录模型与分区键推导
// 背景：12 位区划代码按层级编码，高位数字组标识祖先区域；县级及以上代码低六位全零
package region

import (
	"database/sql"
	"errors"
	"fmt"
)

// partDivisor：分区键除数；code 低六位清零后除以 1e6 得到 6 位顶层键
const partDivisor = 1_000_000

// 层级名称，与 rank 0-5 一一对应
const (
	LevelCountry  = "country"
	LevelProvince = "province"
	LevelCity     = "city"
	LevelCounty   = "county"
	LevelTown     = "township"
	LevelVillage  = "village"
)

// levelRanks：层级到 rank 的冗余映射；两者必须保持一致
var levelRanks = map[string]int{
	LevelCountry:  0,
	LevelProvince: 1,
	LevelCity:     2,
	LevelCounty:   3,
	LevelTown:     4,
	LevelVillage:  5,
}

// RankOf：层级名取 rank；未知层级返回 -1
func RankOf(level string) int {
	if r, ok := levelRanks[level]; ok {
		return r
	}
	return -1
}

// ValidLevel：rank 与 level 是否为合法且一致的组合
func ValidLevel(level string, rank int) bool {
	r, ok := levelRanks[level]
	return ok && r == rank
}

// Record：一条行政区划记录；字段顺序与 region 表列顺序一致
type Record struct {
	Code         int64
	Parent       sql.NullInt64
	Name         string
	Level        string
	Rank         int
	Adcode       sql.NullString
	PostCode     sql.NullString
	AreaCode     sql.NullString
	URCode       sql.NullString
	Municipality bool
	Virtual      bool
	Dummy        bool
	Longitude    sql.NullFloat64
	Latitude     sql.NullFloat64
	// Center：point 类型的文本形式 "(lng,lat)"，导出导入原样透传
	Center   sql.NullString
	Province sql.NullString
	City     sql.NullString
	County   sql.NullString
	Town     sql.NullString
	Village  sql.NullString
}

// PartitionKey：记录所属分区键；每条记录恰好属于一个分区
func (r *Record) PartitionKey() int64 { return KeyOf(r.Code) }

// KeyOf：由 12 位代码推导 6 位顶层分区键
func KeyOf(code int64) int64 { return code / partDivisor }

// IsTopLevel：低六位全零的代码是县级及以上的顶层标记，用于枚举分区键
func IsTopLevel(code int64) bool { return code%partDivisor == 0 }

// Validate：写入前的基本一致性检查
// 约束：code 必须为正；rank 与 level 必须一致；parent 不得指向自身
func (r *Record) Validate() error {
	if r.Code <= 0 {
		return fmt.Errorf("record %d: non-positive code", r.Code)
	}
	if !ValidLevel(r.Level, r.Rank) {
		return fmt.Errorf("record %d: level %q inconsistent with rank %d", r.Code, r.Level, r.Rank)
	}
	if r.Parent.Valid && r.Parent.Int64 == r.Code {
		return errors.New("record references itself as parent")
	}
	if !r.Parent.Valid && r.Rank != 0 {
		return fmt.Errorf("record %d: nil parent on non-root rank %d", r.Code, r.Rank)
	}
	return nil
}
