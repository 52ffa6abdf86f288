package partition

import (
	"errors"

	"adcode-db/internal/store"
)

// 错误分类：导出/装载路径的四类可判定错误
// 约束：文件系统错误统一包裹 ErrIO；请求的分区键缺少对应导出文件为 ErrNotFound；
// 存储侧错误沿用 store 的分类，不再二次包装。
var (
	ErrIO               = errors.New("io error")
	ErrNotFound         = errors.New("partition file not found")
	ErrConstraint       = store.ErrConstraint
	ErrStoreUnavailable = store.ErrStoreUnavailable
)
