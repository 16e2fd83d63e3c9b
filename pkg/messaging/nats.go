package messaging

import (
	"fmt"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/pkg/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Connect 连接 NATS，断线后自动重连
func Connect(cfg *config.Config) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.NATS.URL,
		nats.Name(cfg.NATS.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	logger.Log.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return conn, nil
}
