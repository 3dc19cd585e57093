// Package location serves the Vietnam administrative-unit catalog. The
// dataset is embedded at build time and indexed once at startup; after that
// every lookup is a read-only map access, safe for concurrent use.
package location

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
)

//go:embed data/provinces.json data/wards.json
var dataFS embed.FS

// Province is one first-level administrative unit.
type Province struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Slug     string `json:"slug"`
	Type     string `json:"type"`
}

// Ward is one commune-level unit belonging to a province.
type Ward struct {
	Code         string `json:"code"`
	ParentCode   string `json:"parentCode"`
	Name         string `json:"name"`
	FullName     string `json:"fullName"`
	Slug         string `json:"slug"`
	Type         string `json:"type"`
	Path         string `json:"path"`
	PathWithType string `json:"pathWithType"`
}

// Index holds the loaded catalog keyed by code.
type Index struct {
	provinces       []Province
	provinceByCode  map[string]Province
	wardByCode      map[string]Ward
	wardsByProvince map[string][]Ward
}

// New loads the embedded dataset.
func New() (*Index, error) {
	return load(dataFS, "data/provinces.json", "data/wards.json")
}

func load(fsys fs.FS, provincePath, wardPath string) (*Index, error) {
	var provinces []Province
	if err := readJSON(fsys, provincePath, &provinces); err != nil {
		return nil, fmt.Errorf("load provinces: %w", err)
	}
	var wards []Ward
	if err := readJSON(fsys, wardPath, &wards); err != nil {
		return nil, fmt.Errorf("load wards: %w", err)
	}

	idx := &Index{
		provinces:       provinces,
		provinceByCode:  make(map[string]Province, len(provinces)),
		wardByCode:      make(map[string]Ward, len(wards)),
		wardsByProvince: make(map[string][]Ward),
	}
	for _, p := range provinces {
		idx.provinceByCode[p.Code] = p
	}
	for _, w := range wards {
		idx.wardByCode[w.Code] = w
		idx.wardsByProvince[w.ParentCode] = append(idx.wardsByProvince[w.ParentCode], w)
	}
	return idx, nil
}

func readJSON(fsys fs.FS, path string, out any) error {
	bs, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, out)
}

// Provinces returns all provinces in dataset order.
func (i *Index) Provinces() []Province { return i.provinces }

// ProvinceByCode looks up one province. ok is false for unknown codes.
func (i *Index) ProvinceByCode(code string) (Province, bool) {
	p, ok := i.provinceByCode[code]
	return p, ok
}

// WardsByProvince returns the wards of a province, empty for unknown codes.
func (i *Index) WardsByProvince(provinceCode string) []Ward {
	return i.wardsByProvince[provinceCode]
}

// WardByCode looks up one ward. ok is false for unknown codes.
func (i *Index) WardByCode(code string) (Ward, bool) {
	w, ok := i.wardByCode[code]
	return w, ok
}

// IsValidLocation reports whether the ward exists and belongs to the given
// province. Addresses are only accepted when this holds.
func (i *Index) IsValidLocation(provinceCode, wardCode string) bool {
	if _, ok := i.provinceByCode[provinceCode]; !ok {
		return false
	}
	w, ok := i.wardByCode[wardCode]
	return ok && w.ParentCode == provinceCode
}
