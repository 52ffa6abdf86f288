package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// 错误分类：上层只关心两类存储错误
// ErrConstraint 对应引用/唯一约束冲突（父记录缺失、code 重复等），
// ErrStoreUnavailable 对应连接建立失败或中途断开。
var (
	ErrConstraint       = errors.New("constraint violation")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Classify：把驱动错误归入分类错误并保留原始信息
// 约束：SQLSTATE 23 类为完整性约束冲突；08 类为连接异常；
// 其余错误原样返回，由调用方决定是否中止。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return fmt.Errorf("%w: %s (%s)", ErrConstraint, pqErr.Message, pqErr.Code)
		case "08", "57":
			return fmt.Errorf("%w: %s (%s)", ErrStoreUnavailable, pqErr.Message, pqErr.Code)
		}
		return err
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
