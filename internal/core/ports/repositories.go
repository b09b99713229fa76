package ports

import (
	"context"

	"github.com/samirrijal/oinez/internal/core/domain"
)

// ReportRepository persists the accessibility report history. The history
// is an audit log of submissions and clearances; the routing knowledge base
// itself stays in memory and is never loaded from here.
type ReportRepository interface {
	Insert(ctx context.Context, report *domain.Report) error
	ListRecent(ctx context.Context, limit, offset int) ([]domain.Report, error)
	Count(ctx context.Context) (int, error)
	CountByKind(ctx context.Context) (map[string]int, error)
}
