package middleware

import (
	"context"
	"net/http"

	"todoapp/internal/model"
	"todoapp/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// AuthHeader 携带令牌的自定义请求头（保持与既有客户端兼容，不使用标准 Bearer 方案）。
const AuthHeader = "x-auth"

// 认证结果在 gin 上下文中的键。
const (
	ContextUserKey  = "authUser"
	ContextTokenKey = "authToken"
)

// TokenResolver 将令牌原文解析为仍持有该令牌的用户。
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (model.User, error)
}

// Authenticate 校验 x-auth 令牌并将认证用户写入上下文。
//
// 每个请求只做一次解析，不跨请求缓存结果；
// 任何失败（缺失、非法、签名不符、已吊销、用户不存在）都返回 401 且不进入后续 handler。
func Authenticate(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.GetHeader(AuthHeader)
		if tokenStr == "" {
			reject(c)
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), tokenStr)
		if err != nil {
			reject(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, tokenStr)
		c.Next()
	}
}

// UserFromContext 取出认证网关写入的用户。
func UserFromContext(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}

// TokenFromContext 取出当前请求携带的令牌原文。
func TokenFromContext(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

func reject(c *gin.Context) {
	if metrics.AuthFailuresTotal != nil {
		metrics.AuthFailuresTotal.Inc()
	}
	c.AbortWithStatus(http.StatusUnauthorized)
}
