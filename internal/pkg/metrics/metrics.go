package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TokensIssuedTotal 已签发的认证令牌总数。
	TokensIssuedTotal prometheus.Counter
	// TokensRevokedTotal 已吊销（登出）的令牌总数。
	TokensRevokedTotal prometheus.Counter
	// AuthFailuresTotal 认证网关拒绝请求的总数（缺失/非法/已吊销令牌）。
	AuthFailuresTotal prometheus.Counter
	// HTTPRequestsTotal 按状态码分类的 HTTP 请求总数。
	HTTPRequestsTotal *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics 注册所有 Prometheus 指标，幂等。
func InitMetrics() {
	initOnce.Do(func() {
		TokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapp_tokens_issued_total",
			Help: "Total number of auth tokens issued.",
		})
		TokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapp_tokens_revoked_total",
			Help: "Total number of auth tokens revoked.",
		})
		AuthFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapp_auth_failures_total",
			Help: "Total number of requests rejected by the auth gate.",
		})
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoapp_http_requests_total",
			Help: "Total number of HTTP requests by status code.",
		}, []string{"status"})

		prometheus.MustRegister(
			TokensIssuedTotal,
			TokensRevokedTotal,
			AuthFailuresTotal,
			HTTPRequestsTotal,
		)
	})
}
