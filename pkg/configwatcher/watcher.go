package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type ConfigReloader func(cfg *config.Config)

const DefaultDebounce = time.Second

// Watch 监听配置目录中 config.yaml 的变化，防抖后重新加载并回调，直到 ctx 结束。
// 监听目录而不是文件本身，编辑器以重命名方式保存时也能收到事件。
func Watch(ctx context.Context, configDir string, debounce time.Duration, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	absDir, err := filepath.Abs(configDir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("resolve config dir: %w", err)
	}

	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go loop(ctx, watcher, absDir, debounce, reloader)
	return nil
}

func loop(ctx context.Context, watcher *fsnotify.Watcher, dir string, debounce time.Duration, reloader ConfigReloader) {
	defer watcher.Close()

	target := filepath.Join(dir, "config.yaml")
	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// 防抖处理
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(dir)
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", target))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
