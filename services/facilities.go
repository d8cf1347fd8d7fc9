package services

import (
	"strings"

	"github.com/proplanet/ecoledger/core"
)

// FacilityDirectory searches a fixed catalog of drop-off points.
type FacilityDirectory struct {
	facilities []core.Facility
}

var _ core.FacilityHandler = (*FacilityDirectory)(nil)

// NewFacilityDirectory serves facilities, or the built-in catalog when
// none are given.
func NewFacilityDirectory(facilities ...core.Facility) *FacilityDirectory {
	if len(facilities) == 0 {
		facilities = core.DefaultFacilities()
	}
	return &FacilityDirectory{facilities: facilities}
}

// List filters by kind ("" or "all" for any) and by a case-insensitive
// query over name and address.
func (d *FacilityDirectory) List(kind core.FacilityKind, query string) []core.Facility {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]core.Facility, 0, len(d.facilities))
	for _, f := range d.facilities {
		if kind != "" && kind != "all" && f.Kind != kind {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(f.Name), query) &&
			!strings.Contains(strings.ToLower(f.Address), query) {
			continue
		}
		out = append(out, f)
	}
	return out
}
