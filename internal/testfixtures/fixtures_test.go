package testfixtures

import (
	"testing"

	"github.com/example/water-supply/internal/supply"
)

func TestProfileFixtureParses(t *testing.T) {
	fixture := NewProfileFixture(WithHouseID("77"), WithStackLevel(9))

	doc, err := supply.DecodeDocument(fixture.JSON())
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}
	profile, err := supply.Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if profile.HouseID != "77" || profile.StackLevel != 9 {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if len(profile.Schedules) != 2 || profile.Schedules[1].Day != "Tuesday" {
		t.Fatalf("unexpected schedules %+v", profile.Schedules)
	}
	if _, err := profile.ValidityWindow(); err != nil {
		t.Fatalf("expected a valid window, got %v", err)
	}
}

func TestProfileFixtureGeneratesUniqueHouses(t *testing.T) {
	first := NewProfileFixture()
	second := NewProfileFixture()
	if first.HouseID == second.HouseID {
		t.Fatalf("expected distinct house IDs, got %q twice", first.HouseID)
	}
}

func TestSampleProfileDocumentParses(t *testing.T) {
	doc, err := supply.DecodeDocument([]byte(SampleProfileDocument))
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}
	profile, err := supply.Parse(doc)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if profile.HouseID != "123" || profile.TransactionID != "ABC123" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
