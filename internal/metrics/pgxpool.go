package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes connection statistics for the control-plane
// pool as Prometheus gauges. Target databases are connected per execution
// and never pooled, so these cover the Postgres side only.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	gauge := func(name, help string, value func(*pgxpool.Stat) int32) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(value(pool.Stat()))
		})
	}

	prometheus.MustRegister(
		gauge("pgxpool_acquired_conns", "Connections currently checked out of the pool",
			func(s *pgxpool.Stat) int32 { return s.AcquiredConns() }),
		gauge("pgxpool_idle_conns", "Connections sitting idle in the pool",
			func(s *pgxpool.Stat) int32 { return s.IdleConns() }),
		gauge("pgxpool_total_conns", "Connections the pool currently holds",
			func(s *pgxpool.Stat) int32 { return s.TotalConns() }),
		gauge("pgxpool_max_conns", "Upper bound on pool connections",
			func(s *pgxpool.Stat) int32 { return s.MaxConns() }),
	)
}
