package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctracker_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctracker_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// RolePermissionChanges counts role/permission pair transitions (assign|remove).
	RolePermissionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctracker_role_permission_changes_total",
			Help: "Total number of role permission assignments and removals",
		},
		[]string{"action"},
	)

	// PermissionCacheLookups tracks effective-permission cache hits and misses.
	PermissionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctracker_permission_cache_lookups_total",
			Help: "Effective permission cache lookups by result",
		},
		[]string{"result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ctracker_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// EmailDeliveries counts outbound email by result (success|failure).
	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctracker_email_deliveries_total",
			Help: "Outbound email deliveries by result",
		},
		[]string{"result"},
	)

	// DocumentBytes accumulates the size of uploaded project documents.
	DocumentBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ctracker_document_upload_bytes_total",
			Help: "Total bytes of uploaded project documents",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ctracker_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
