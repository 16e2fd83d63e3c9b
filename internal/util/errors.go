package util

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError 调用参数不合法，直接返回给调用方，不做重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFoundError 引用了不存在的ID
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PersistenceError 远端与本地缓存均写入失败；只在存储边界记录日志，不向 UI 调用方传播
type PersistenceError struct {
	Key    string
	Remote error
	Local  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: remote: %v; local: %v", e.Key, e.Remote, e.Local)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{e.Remote, e.Local}
}
