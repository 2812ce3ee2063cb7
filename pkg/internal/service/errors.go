package service

import (
	"errors"
	"fmt"
)

// 业务错误分为四类，handle 层据此映射 HTTP 状态码：
//   - ErrForbidden        写操作被访问门禁拒绝，未产生任何写入
//   - ErrNotFound         按 id 引用的摄取流程不存在
//   - ValidationError     输入违反必需的关联关系（如未知 source_id）
//   - DependencyError     对象存储等外部依赖调用失败，包装底层原因
var (
	ErrForbidden = errors.New("operation forbidden")
	ErrNotFound  = errors.New("ingest process not found")
)

// ValidationError 输入校验失败，Field 指出违规字段.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// DependencyError 外部依赖调用失败.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s failed: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
