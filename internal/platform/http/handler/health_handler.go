// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check is a named dependency probe, e.g. a database ping.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Health は /healthz エンドポイントのハンドラーを返します。
// 登録された依存先（MySQL・Redisなど）を順に確認し、失敗があれば503を返します。
// キャッシュは常に無効化します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := []string{}
		for _, chk := range checks {
			if chk.Probe == nil {
				continue
			}
			if err := chk.Probe(ctx); err != nil {
				slog.Warn("health check failed", "dependency", chk.Name, "error", err)
				failed = append(failed, chk.Name)
			}
		}

		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "unavailable", "failed": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}
