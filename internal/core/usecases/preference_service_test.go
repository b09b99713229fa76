package usecases

import (
	"context"
	"testing"

	"github.com/samirrijal/oinez/internal/core/domain"
)

func TestPreferences_RoundTrip(t *testing.T) {
	svc := NewPreferenceService(newMockCache())

	slope := 4.5
	in := domain.AccessibilityPreferences{
		RequiresWheelchairAccess: true,
		NeedsRestStops:           true,
		MaximumSlope:             &slope,
	}
	if err := svc.Set(context.Background(), "rider-42", in); err != nil {
		t.Fatalf("set preferences: %v", err)
	}

	out, err := svc.Get(context.Background(), "rider-42")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if !out.RequiresWheelchairAccess || !out.NeedsRestStops || out.PreferWellLit {
		t.Errorf("stored flags lost: %+v", out)
	}
	if out.MaximumSlope == nil || *out.MaximumSlope != slope {
		t.Errorf("reserved field not carried through: %+v", out.MaximumSlope)
	}
}

func TestPreferences_DefaultsForUnknownRider(t *testing.T) {
	svc := NewPreferenceService(newMockCache())

	out, err := svc.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if out != (domain.AccessibilityPreferences{}) {
		t.Errorf("expected zero-value defaults, got %+v", out)
	}
}

func TestPreferences_DefaultsWithoutStore(t *testing.T) {
	svc := NewPreferenceService(nil)

	out, err := svc.Get(context.Background(), "rider-42")
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if out != (domain.AccessibilityPreferences{}) {
		t.Errorf("expected zero-value defaults, got %+v", out)
	}
}

func TestPreferences_SetRequiresStore(t *testing.T) {
	svc := NewPreferenceService(nil)
	err := svc.Set(context.Background(), "rider-42", domain.AccessibilityPreferences{})
	if err == nil {
		t.Error("expected an error without a preference store")
	}
}

func TestPreferences_RiderIDRequired(t *testing.T) {
	svc := NewPreferenceService(newMockCache())

	if err := svc.Set(context.Background(), "", domain.AccessibilityPreferences{}); err == nil {
		t.Error("expected an error for an empty rider id on set")
	}
	if _, err := svc.Get(context.Background(), ""); err == nil {
		t.Error("expected an error for an empty rider id on get")
	}
}

func TestPreferences_CorruptEntry(t *testing.T) {
	cache := newMockCache()
	cache.data[prefsKey("rider-42")] = []byte("{not json")
	svc := NewPreferenceService(cache)

	if _, err := svc.Get(context.Background(), "rider-42"); err == nil {
		t.Error("expected an error for a corrupt stored entry")
	}
}
