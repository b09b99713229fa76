package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/oinez/internal/adapters/postgres"
	"github.com/samirrijal/oinez/internal/adapters/valkey"
	"github.com/samirrijal/oinez/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Navigation  *usecases.NavigationService
	Reports     *usecases.ReportService
	Preferences *usecases.PreferenceService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
