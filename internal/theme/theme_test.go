package theme

import (
	"sort"
	"testing"
)

func TestListIsSortedAndComplete(t *testing.T) {
	names := List()
	if !sort.StringsAreSorted(names) {
		t.Errorf("List() not sorted: %v", names)
	}
	if len(names) != len(themes) {
		t.Errorf("List() returned %d names, want %d", len(names), len(themes))
	}
}

func TestSet(t *testing.T) {
	defer func() { Current = Default }()

	if !Set("nord") || Current.Name != "nord" {
		t.Errorf("Set(nord) did not switch, current = %s", Current.Name)
	}
	if Set("missing") {
		t.Error("Set(missing) reported success")
	}
	if Current.Name != "nord" {
		t.Errorf("failed Set changed the theme to %s", Current.Name)
	}
}

func TestDerivedColors(t *testing.T) {
	for _, name := range List() {
		th := themes[name]
		if th.Name != name {
			t.Errorf("theme %s registered as %s", th.Name, name)
		}
		if th.TabActive != th.Primary || th.BorderFocus != th.Accent || th.Info != th.Link {
			t.Errorf("theme %s: derived colors do not follow the palette", name)
		}
		if th.Background == "" || th.Surface == "" {
			t.Errorf("theme %s: missing background colors", name)
		}
	}
}
