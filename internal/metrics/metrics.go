package metrics

import (
	"net/http"

	"github.com/gustycube/netspread/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	StepsTotal      = prometheus.NewCounter(prometheus.CounterOpts{Name: "netspread_steps_total", Help: "propagation steps run"})
	TrialsTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "netspread_trials_total", Help: "infection trials"}, []string{"result"})
	InfectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "netspread_infections_total", Help: "computers newly infected"})
	RunsTotal       = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "netspread_runs_total", Help: "finished runs"}, []string{"outcome"})
	InfectedGauge   = prometheus.NewGauge(prometheus.GaugeOpts{Name: "netspread_infected_computers", Help: "currently infected computers"})
)

func init() {
	prometheus.MustRegister(StepsTotal, TrialsTotal, InfectionsTotal, RunsTotal, InfectedGauge)
}

// Handler returns a mux serving /metrics and the health endpoints.
func Handler(healthHandler *health.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler.HealthHandler)
	mux.HandleFunc("/ready", healthHandler.ReadinessHandler)
	mux.HandleFunc("/live", healthHandler.LivenessHandler)
	return mux
}

func ServeWithHealth(addr string, healthHandler *health.Handler, log *zap.SugaredLogger) {
	if err := http.ListenAndServe(addr, Handler(healthHandler)); err != nil {
		log.Warnw("metrics server stopped", "err", err)
	}
}
