package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Routing quality
	MetricRouteSuccessRate  = "routing.success_rate"
	MetricRouteSearchBudget = "routing.search_budget_exhaustions"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricReportsIngested  = "business.reports_ingested"
	MetricObstaclesCleared = "business.obstacles_cleared"
)
