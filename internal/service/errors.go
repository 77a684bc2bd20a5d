package service

import "errors"

var (
	// ErrInvalidInput 表示缺少必填字段或字段格式不合法
	ErrInvalidInput = errors.New("invalid input")
	// ErrConstraintViolation 表示操作会破坏项目/任务的约束（未完成子任务、日期越界）
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrMalformedRecord 仅在严格模式下返回：存储的记录无法解析
	ErrMalformedRecord = errors.New("malformed stored record")
)
