package information

import (
	"sort"
	"testing"
)

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	if len(names) != 14 {
		t.Errorf("FieldNames() returned %d names, want 14", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Error("FieldNames() must be sorted")
	}
	for _, name := range names {
		if !IsUpdatableField(name) {
			t.Errorf("FieldNames() entry %q not updatable", name)
		}
	}
}

func TestInformationMap(t *testing.T) {
	info := &Information{
		DeviceName:   "gateway-01",
		Manufacturer: "Acme Sensors",
		SysLocation:  "server room",
	}

	m := info.Map()
	if len(m) != 14 {
		t.Errorf("Map() has %d entries, want 14", len(m))
	}
	if m["manufacturer"] != "Acme Sensors" {
		t.Errorf("manufacturer = %q", m["manufacturer"])
	}
	if m["sysLocation"] != "server room" {
		t.Errorf("sysLocation = %q", m["sysLocation"])
	}
	if m["model"] != "" {
		t.Errorf("unset field model = %q, want empty", m["model"])
	}
	if _, ok := m["deviceName"]; ok {
		t.Error("device name is the record key, not an updatable field")
	}
}
