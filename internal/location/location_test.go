package location

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestNewLoadsEmbeddedCatalog(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, idx.Provinces())

	hanoi, ok := idx.ProvinceByCode("01")
	require.True(t, ok)
	require.Equal(t, "Hà Nội", hanoi.Name)

	wards := idx.WardsByProvince("01")
	require.NotEmpty(t, wards)
	for _, w := range wards {
		require.Equal(t, "01", w.ParentCode)
	}
}

func TestIsValidLocation(t *testing.T) {
	idx, err := New()
	require.NoError(t, err)

	require.True(t, idx.IsValidLocation("01", "00004"))
	// Ward belongs to a different province.
	require.False(t, idx.IsValidLocation("79", "00004"))
	require.False(t, idx.IsValidLocation("01", "99999"))
	require.False(t, idx.IsValidLocation("xx", "00004"))
	require.False(t, idx.IsValidLocation("", ""))
}

func TestLoadRejectsMalformedData(t *testing.T) {
	fsys := fstest.MapFS{
		"provinces.json": {Data: []byte(`not json`)},
		"wards.json":     {Data: []byte(`[]`)},
	}
	_, err := load(fsys, "provinces.json", "wards.json")
	require.Error(t, err)

	fsys["provinces.json"] = &fstest.MapFile{Data: []byte(`[]`)}
	idx, err := load(fsys, "provinces.json", "wards.json")
	require.NoError(t, err)
	require.Empty(t, idx.Provinces())
}
