package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	cases := []struct {
		identifier string
		want       bool
	}{
		{"alice@example.com", true},
		{"a@b.co", true},
		{" alice@example.com ", true},
		{"alice", false},
		{"alice@example", false},
		{"alice example@x.com", false},
		{"@example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, IsEmail(tc.identifier), "identifier %q", tc.identifier)
	}
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Baby Clothes", "baby-clothes"},
		{"  Trailing  Spaces  ", "trailing-spaces"},
		{"Đồ chơi trẻ em", "do-choi-tre-em"},
		{"Sữa & Bỉm!!", "sua-bim"},
		{"UPPER case", "upper-case"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}
