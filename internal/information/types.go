package information

import (
	"sort"
	"time"
)

// Information is the identification record for one device.
// All identification fields are free-form strings; empty means unset.
type Information struct {
	DeviceName         string
	DeviceClass        string
	Manufacturer       string
	ManufacturerURI    string
	Model              string
	ProductCode        string
	HardwareRevision   string
	SoftwareRevision   string
	SerialNumber       string
	ProductInstanceURI string
	WebshopURI         string
	SysDescr           string
	SysName            string
	SysContact         string
	SysLocation        string
	UpdatedAt          time.Time
}

// fieldColumns maps API field names to their database columns.
//
// This is the update allow-list: only names present here may reach an
// UPDATE statement, and the column identifiers interpolated into SQL
// come from this map, never from request input.
var fieldColumns = map[string]string{
	"deviceClass":        "device_class",
	"manufacturer":       "manufacturer",
	"manufacturerUri":    "manufacturer_uri",
	"model":              "model",
	"productCode":        "product_code",
	"hardwareRevision":   "hardware_revision",
	"softwareRevision":   "software_revision",
	"serialNumber":       "serial_number",
	"productInstanceUri": "product_instance_uri",
	"webshopUri":         "webshop_uri",
	"sysDescr":           "sys_descr",
	"sysName":            "sys_name",
	"sysContact":         "sys_contact",
	"sysLocation":        "sys_location",
}

// FieldNames returns the updatable field names in sorted order.
func FieldNames() []string {
	names := make([]string, 0, len(fieldColumns))
	for name := range fieldColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsUpdatableField reports whether name is in the update allow-list.
func IsUpdatableField(name string) bool {
	_, ok := fieldColumns[name]
	return ok
}

// fieldPtr returns a pointer to the struct field for an API field name,
// or nil for names outside the allow-list.
func (i *Information) fieldPtr(name string) *string {
	switch name {
	case "deviceClass":
		return &i.DeviceClass
	case "manufacturer":
		return &i.Manufacturer
	case "manufacturerUri":
		return &i.ManufacturerURI
	case "model":
		return &i.Model
	case "productCode":
		return &i.ProductCode
	case "hardwareRevision":
		return &i.HardwareRevision
	case "softwareRevision":
		return &i.SoftwareRevision
	case "serialNumber":
		return &i.SerialNumber
	case "productInstanceUri":
		return &i.ProductInstanceURI
	case "webshopUri":
		return &i.WebshopURI
	case "sysDescr":
		return &i.SysDescr
	case "sysName":
		return &i.SysName
	case "sysContact":
		return &i.SysContact
	case "sysLocation":
		return &i.SysLocation
	}
	return nil
}

// Map returns the record as field name → value, as served by the API.
func (i *Information) Map() map[string]string {
	m := make(map[string]string, len(fieldColumns))
	for name := range fieldColumns {
		m[name] = *i.fieldPtr(name)
	}
	return m
}
