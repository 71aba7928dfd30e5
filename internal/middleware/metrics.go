package middleware

import (
	"strconv"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// HTTPResponses counts responses by route template and status class.
	HTTPResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_http_responses_total",
		Help: "Total HTTP responses by route and status class",
	}, []string{"route", "class"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide fiberprometheus instance. Collectors are
// registered on the default registry, so only the first call creates them.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics through fiberprometheus and the
// per-route response counter. Register ErrorResponder below it so errors are
// counted with the status the client receives.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := p.Middleware
	return func(c *fiber.Ctx) error {
		err := handler(c)
		route := c.Route().Path
		HTTPResponses.WithLabelValues(route, strconv.Itoa(responseStatus(c, err)/100)+"xx").Inc()
		return err
	}
}
