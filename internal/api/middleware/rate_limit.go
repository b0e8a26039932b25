package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendance-ledger/internal/model"
	"attendance-ledger/pkg/redis"
	"attendance-ledger/pkg/response"
)

// rateCounter 滑动窗口计数器，由 *redis.Client 实现
type rateCounter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// subjectFunc 返回计数主体；ok=false 时本次不计数
type subjectFunc func(c *gin.Context) (subject string, ok bool)

// RateLimit 按客户端 IP 限流，挂在认证之前（登录与全部需认证的接口）
// Basic 头里的用户名此时尚未校验，不能作为计数主体
// rdb 为 nil 时直接放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if rdb == nil {
		return passThrough
	}
	return rateLimit(rdb, ipSubject, limit, window, logger)
}

// UserRateLimit 按已认证用户限流，必须挂在 BasicAuth 之后
// 同一账号换 IP 也共享配额
func UserRateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if rdb == nil {
		return passThrough
	}
	return rateLimit(rdb, userSubject, limit, window, logger)
}

func rateLimit(counter rateCounter, subject subjectFunc, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := subject(c)
		if !ok {
			c.Next()
			return
		}

		key := who + ":" + c.FullPath()
		allowed, err := counter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流计数失败，本次放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }

func ipSubject(c *gin.Context) (string, bool) {
	return "ip:" + c.ClientIP(), true
}

func userSubject(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return "", false
	}
	u, ok := v.(*model.User)
	if !ok || u == nil {
		return "", false
	}
	return "user:" + strconv.Itoa(u.ID), true
}
