package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 业务指标。调用 InitMetrics 后才可使用。
var (
	UsersRegisteredTotal prometheus.Counter
	LoginsTotal          prometheus.Counter
	LoginFailuresTotal   prometheus.Counter
	TasksCreatedTotal    prometheus.Counter
	TasksUpdatedTotal    prometheus.Counter
	TasksDeletedTotal    prometheus.Counter
	RevokedTokenTotal    prometheus.Counter
)

var initOnce sync.Once

// InitMetrics 注册 Prometheus 指标。
//
// 幂等：多次调用只注册一次（便于测试中重复初始化）。
func InitMetrics() {
	initOnce.Do(func() {
		UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_users_registered_total",
			Help: "Total number of registered users.",
		})
		LoginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_logins_total",
			Help: "Total number of successful logins.",
		})
		LoginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_login_failures_total",
			Help: "Total number of failed login attempts.",
		})
		TasksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_tasks_created_total",
			Help: "Total number of tasks created.",
		})
		TasksUpdatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_tasks_updated_total",
			Help: "Total number of task updates.",
		})
		TasksDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_tasks_deleted_total",
			Help: "Total number of tasks deleted.",
		})
		RevokedTokenTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskmanager_revoked_token_rejections_total",
			Help: "Total number of requests rejected because the token was revoked.",
		})

		prometheus.MustRegister(
			UsersRegisteredTotal,
			LoginsTotal,
			LoginFailuresTotal,
			TasksCreatedTotal,
			TasksUpdatedTotal,
			TasksDeletedTotal,
			RevokedTokenTotal,
		)
	})
}
