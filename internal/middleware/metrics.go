package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command errors by command name. Incremented by
// the cache package's client hook.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wayfarer_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"command"})

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
