package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DualStore 尽力而为的双写：先写远端，无论成败再写本地缓存。
// 远端失败只记录日志，两端都失败才返回 PersistenceError。
type DualStore[T any] struct {
	remote Remote
	local  LocalCache
	path   string
	key    string
	log    *zap.Logger
}

func NewDualStore[T any](remote Remote, local LocalCache, path, key string, log *zap.Logger) *DualStore[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &DualStore[T]{
		remote: remote,
		local:  local,
		path:   path,
		key:    key,
		log:    log.With(zap.String("key", key)),
	}
}

// Load 优先读取远端，失败回退本地缓存；两者都没有数据时 found 为 false
func (s *DualStore[T]) Load(ctx context.Context) (value T, found bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "dualstore.load", attribute.String("key", s.key))
	defer func() { tracing.EndSpan(span, err) }()

	var remoteErr error
	if s.remote != nil {
		var v T
		if remoteErr = s.remote.GetJSON(ctx, s.path, &v); remoteErr == nil {
			s.refreshLocal(ctx, v)
			return v, true, nil
		}
		monitoring.PersistenceFailures.WithLabelValues(s.key, "remote").Inc()
		s.log.Warn("remote load failed, falling back to local cache", zap.Error(remoteErr))
	}

	if s.local == nil {
		return value, false, nil
	}

	data, ok, localErr := s.local.Get(ctx, s.key)
	if localErr != nil {
		monitoring.PersistenceFailures.WithLabelValues(s.key, "local").Inc()
		return value, false, &util.PersistenceError{Key: s.key, Remote: remoteErr, Local: localErr}
	}
	if !ok {
		return value, false, nil
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decode local cache %s: %w", s.key, err)
	}
	return value, true, nil
}

// Save 写入远端与本地缓存
func (s *DualStore[T]) Save(ctx context.Context, value T) (err error) {
	ctx, span := tracing.StartSpan(ctx, "dualstore.save", attribute.String("key", s.key))
	defer func() { tracing.EndSpan(span, err) }()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	var remoteErr, localErr error
	if s.remote != nil {
		if remoteErr = s.remote.PostJSON(ctx, s.path, json.RawMessage(data)); remoteErr != nil {
			monitoring.PersistenceFailures.WithLabelValues(s.key, "remote").Inc()
			s.log.Warn("remote save failed, keeping local cache only", zap.Error(remoteErr))
		}
	} else {
		remoteErr = fmt.Errorf("no remote configured")
	}

	if s.local != nil {
		if localErr = s.local.Set(ctx, s.key, data); localErr != nil {
			monitoring.PersistenceFailures.WithLabelValues(s.key, "local").Inc()
			s.log.Error("local cache write failed", zap.Error(localErr))
		}
	} else {
		localErr = fmt.Errorf("no local cache configured")
	}

	if remoteErr != nil && localErr != nil {
		return &util.PersistenceError{Key: s.key, Remote: remoteErr, Local: localErr}
	}
	return nil
}

func (s *DualStore[T]) refreshLocal(ctx context.Context, v T) {
	if s.local == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.local.Set(ctx, s.key, data); err != nil {
		s.log.Debug("refresh local cache failed", zap.Error(err))
	}
}
