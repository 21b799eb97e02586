package taxonomy

import "strings"

// Rank is a classification level label. Recognized NCBI ranks are
// normalized to their underscore form; unrecognized ranks are preserved
// verbatim (normalized the same way) and surfaced as build diagnostics.
type Rank string

// Common ranks.
const (
	RankNoRank  Rank = "no_rank"
	RankSpecies Rank = "species"
	RankGenus   Rank = "genus"
	RankFamily  Rank = "family"
	RankOrder   Rank = "order"
	RankClass   Rank = "class"
	RankPhylum  Rank = "phylum"
	RankKingdom Rank = "kingdom"
)

// knownRanks is the set of rank labels used by the NCBI taxonomy,
// in normalized (underscore) form.
var knownRanks = map[Rank]struct{}{
	"no_rank":          {},
	"superkingdom":     {},
	"kingdom":          {},
	"subkingdom":       {},
	"superphylum":      {},
	"phylum":           {},
	"subphylum":        {},
	"superclass":       {},
	"class":            {},
	"subclass":         {},
	"infraclass":       {},
	"cohort":           {},
	"subcohort":        {},
	"superorder":       {},
	"order":            {},
	"suborder":         {},
	"infraorder":       {},
	"parvorder":        {},
	"superfamily":      {},
	"family":           {},
	"subfamily":        {},
	"tribe":            {},
	"subtribe":         {},
	"genus":            {},
	"subgenus":         {},
	"section":          {},
	"subsection":       {},
	"series":           {},
	"species_group":    {},
	"species_subgroup": {},
	"species":          {},
	"subspecies":       {},
	"varietas":         {},
	"subvariety":       {},
	"forma":            {},
	"forma_specialis":  {},
	"strain":           {},
	"serogroup":        {},
	"serotype":         {},
	"genotype":         {},
	"biotype":          {},
	"morph":            {},
	"pathogroup":       {},
	"isolate":          {},
	"clade":            {},
}

// NormalizeRank converts a raw rank label from the dump into its
// normalized form: surrounding whitespace trimmed, spaces and dashes
// replaced with underscores. An empty label becomes RankNoRank.
func NormalizeRank(raw string) Rank {
	label := strings.TrimSpace(raw)
	if label == "" {
		return RankNoRank
	}
	label = strings.ReplaceAll(label, " ", "_")
	label = strings.ReplaceAll(label, "-", "_")
	return Rank(label)
}

// KnownRank reports whether r is a rank label used by the NCBI taxonomy.
func KnownRank(r Rank) bool {
	_, ok := knownRanks[r]
	return ok
}
