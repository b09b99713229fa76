package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/oinez/internal/core/domain"
	"github.com/samirrijal/oinez/internal/core/ports"
)

// prefsTTLSeconds keeps stored preferences for 30 days past last write.
const prefsTTLSeconds = 30 * 24 * 3600

// PreferenceService stores each rider's accessibility preferences in the
// cache backend. Unknown riders get zero-value preferences: no wheelchair
// requirement, no lighting preference, no rest stops.
type PreferenceService struct {
	cache ports.CacheService
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(cache ports.CacheService) *PreferenceService {
	return &PreferenceService{cache: cache}
}

// Set stores the preferences for a rider.
func (s *PreferenceService) Set(ctx context.Context, riderID string, prefs domain.AccessibilityPreferences) error {
	if riderID == "" {
		return fmt.Errorf("rider id is required")
	}
	if s.cache == nil {
		return fmt.Errorf("preference store not available")
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return s.cache.Set(ctx, prefsKey(riderID), data, prefsTTLSeconds)
}

// Get returns the stored preferences for a rider, or defaults when none
// are stored or the store is unavailable.
func (s *PreferenceService) Get(ctx context.Context, riderID string) (domain.AccessibilityPreferences, error) {
	var prefs domain.AccessibilityPreferences
	if riderID == "" {
		return prefs, fmt.Errorf("rider id is required")
	}
	if s.cache == nil {
		return prefs, nil
	}

	data, err := s.cache.Get(ctx, prefsKey(riderID))
	if err != nil {
		// Missing key or unavailable store both mean defaults.
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.AccessibilityPreferences{}, fmt.Errorf("decode stored preferences: %w", err)
	}
	return prefs, nil
}

func prefsKey(riderID string) string {
	return "prefs:" + riderID
}
