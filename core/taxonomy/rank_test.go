package taxonomy

import "testing"

func TestNormalizeRank(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Rank
	}{
		{"empty", "", RankNoRank},
		{"no rank", "no rank", RankNoRank},
		{"species", "species", RankSpecies},
		{"spaces", "species group", "species_group"},
		{"dashes", "forma-specialis", "forma_specialis"},
		{"surrounding whitespace", "  genus  ", RankGenus},
		{"unknown preserved", "holobiont stage", "holobiont_stage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRank(tt.raw); got != tt.want {
				t.Errorf("NormalizeRank(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestKnownRank(t *testing.T) {
	for _, r := range []Rank{RankNoRank, RankSpecies, RankGenus, "species_group", "clade"} {
		if !KnownRank(r) {
			t.Errorf("KnownRank(%q) = false, want true", r)
		}
	}
	for _, r := range []Rank{"holobiont_stage", "SPECIES", "species group"} {
		if KnownRank(r) {
			t.Errorf("KnownRank(%q) = true, want false", r)
		}
	}
}
