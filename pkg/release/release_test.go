package release

import (
	"strings"
	"testing"
)

func TestAssetName(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"bibtex:Matias2025-px", "Matias2025-px.mp3"},
		{"bibtex:smith.2024/ab", "smith_2024_ab.mp3"},
		{"plain_id", "plain_id.mp3"},
		{"bibtex:", ".mp3"},
	}
	for _, tc := range cases {
		if got := AssetName(tc.id); got != tc.want {
			t.Errorf("AssetName(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestAssetName_CapsLength(t *testing.T) {
	long := "bibtex:" + strings.Repeat("a", 200)
	got := AssetName(long)
	if len(got) != 100+len(".mp3") {
		t.Errorf("len = %d, want %d", len(got), 100+len(".mp3"))
	}
	if !strings.HasSuffix(got, ".mp3") {
		t.Errorf("missing extension: %q", got)
	}
}
