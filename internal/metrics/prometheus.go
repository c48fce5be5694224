package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all configuration registry metrics.
type Registry struct {
	// Object lifecycle
	OperationsTotal    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	ObjectsLoaded      *prometheus.GaugeVec

	// Filesystem reconciliation
	ReconcileActions *prometheus.CounterVec
	BackupFailures   prometheus.Counter

	// Settings resource
	SettingsReloads *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_config_operations_total",
		Help: "Configuration operations completed, by object kind",
	}, []string{"kind", "op"})

	r.ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_config_validation_failures_total",
		Help: "Full-namespace validation runs aborted by an invalid object",
	}, []string{"kind"})

	r.ObjectsLoaded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "floe_config_objects_loaded",
		Help: "Objects currently registered per kind and tier",
	}, []string{"kind", "tier"})

	r.ReconcileActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_config_reconcile_actions_total",
		Help: "Registry reconciliation outcomes for reported file changes",
	}, []string{"kind", "action"})

	r.BackupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "floe_config_backup_failures_total",
		Help: "Retired files deleted outright because the .old rename failed",
	})

	r.SettingsReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_settings_reloads_total",
		Help: "Daemon settings file reloads",
	}, []string{"result"})

	return r
}
