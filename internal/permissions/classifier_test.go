package permissions

import (
	"testing"

	"github.com/CosmoBean/simplysecure/internal/models"
)

func TestClassifyTotalOverEnum(t *testing.T) {
	validRisks := map[models.RiskLevel]bool{
		models.RiskLow:    true,
		models.RiskMedium: true,
		models.RiskHigh:   true,
	}
	validRecs := map[models.Recommendation]bool{
		models.RecommendAllow:   true,
		models.RecommendLimited: true,
		models.RecommendDeny:    true,
	}

	for _, pt := range models.AllPermissionTypes() {
		c, err := Classify(pt)
		if err != nil {
			t.Fatalf("Classify(%s) returned error: %v", pt, err)
		}
		if !validRisks[c.RiskLevel] {
			t.Errorf("Classify(%s) returned invalid risk level %q", pt, c.RiskLevel)
		}
		if !validRecs[c.Recommendation] {
			t.Errorf("Classify(%s) returned invalid recommendation %q", pt, c.Recommendation)
		}
		if c.Reasoning == "" {
			t.Errorf("Classify(%s) returned empty reasoning", pt)
		}
	}
}

func TestClassifyTables(t *testing.T) {
	tests := []struct {
		pt   models.PermissionType
		risk models.RiskLevel
		rec  models.Recommendation
	}{
		{models.PermissionCamera, models.RiskHigh, models.RecommendDeny},
		{models.PermissionMicrophone, models.RiskHigh, models.RecommendDeny},
		{models.PermissionContacts, models.RiskHigh, models.RecommendLimited},
		{models.PermissionPhotos, models.RiskHigh, models.RecommendLimited},
		{models.PermissionFiles, models.RiskHigh, models.RecommendAllow},
		{models.PermissionLocation, models.RiskMedium, models.RecommendAllow},
		{models.PermissionNotifications, models.RiskMedium, models.RecommendAllow},
		{models.PermissionCalendar, models.RiskMedium, models.RecommendAllow},
		{models.PermissionReminders, models.RiskMedium, models.RecommendAllow},
		{models.PermissionNetwork, models.RiskLow, models.RecommendAllow},
		{models.PermissionSystemEvents, models.RiskLow, models.RecommendAllow},
	}

	for _, tt := range tests {
		c, err := Classify(tt.pt)
		if err != nil {
			t.Fatalf("Classify(%s): %v", tt.pt, err)
		}
		if c.RiskLevel != tt.risk {
			t.Errorf("Classify(%s) risk = %s, want %s", tt.pt, c.RiskLevel, tt.risk)
		}
		if c.Recommendation != tt.rec {
			t.Errorf("Classify(%s) recommendation = %s, want %s", tt.pt, c.Recommendation, tt.rec)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, pt := range models.AllPermissionTypes() {
		first, _ := Classify(pt)
		for i := 0; i < 3; i++ {
			again, _ := Classify(pt)
			if again != first {
				t.Errorf("Classify(%s) not deterministic: %+v vs %+v", pt, first, again)
			}
		}
	}
}

func TestClassifyUnknown(t *testing.T) {
	if _, err := Classify("bluetooth"); err != ErrUnknownPermission {
		t.Errorf("expected ErrUnknownPermission, got %v", err)
	}
	if _, err := ClassifyString(""); err != ErrUnknownPermission {
		t.Errorf("expected ErrUnknownPermission for empty string, got %v", err)
	}
}

func TestAllCoversEveryType(t *testing.T) {
	all := All()
	if len(all) != len(models.AllPermissionTypes()) {
		t.Fatalf("All() returned %d classifications, want %d", len(all), len(models.AllPermissionTypes()))
	}

	seen := make(map[models.PermissionType]bool)
	for _, c := range all {
		seen[c.Type] = true
	}
	for _, pt := range models.AllPermissionTypes() {
		if !seen[pt] {
			t.Errorf("All() missing type %s", pt)
		}
	}
}

func TestNewPermissionImmutableClassification(t *testing.T) {
	p, err := NewPermission(models.PermissionCamera, "Record product demos", true)
	if err != nil {
		t.Fatalf("NewPermission: %v", err)
	}
	if p.RiskLevel != models.RiskHigh || p.Recommendation != models.RecommendDeny {
		t.Errorf("camera permission classified as %s/%s, want high/deny", p.RiskLevel, p.Recommendation)
	}
	if !p.IsRequired || p.Description != "Record product demos" {
		t.Error("caller-supplied fields not preserved")
	}

	if _, err := NewPermission("telepathy", "", false); err == nil {
		t.Error("expected error for unknown type")
	}
}
