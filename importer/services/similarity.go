package services

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"tree-inventory-backend/db/models"
)

// Two catalog entries within this edit distance of the same query are an
// ambiguous match that the operator has to resolve.
const speciesMatchThreshold = 2

// SpeciesCandidate pairs a catalog entry with its edit distance from a
// query. Candidates are transient; they are serialized into
// TOO_MANY_SPECIES error data but never persisted on their own.
type SpeciesCandidate struct {
	ID              string `json:"pk"`
	Genus           string `json:"genus"`
	Species         string `json:"species"`
	Cultivar        string `json:"cultivar"`
	OtherPartOfName string `json:"other_part_of_name"`
	CommonName      string `json:"common_name"`
	Distance        int    `json:"distance"`
}

func newCandidate(s models.Species, distance int) SpeciesCandidate {
	return SpeciesCandidate{
		ID:              s.ID.String(),
		Genus:           s.Genus,
		Species:         s.Species,
		Cultivar:        s.Cultivar,
		OtherPartOfName: s.OtherPartOfName,
		CommonName:      s.CommonName,
		Distance:        distance,
	}
}

// RankSpecies orders catalog entries by edit distance between query and
// each entry's composite name, ascending, and returns at most limit
// candidates. The catalog slice must already be in insertion (id) order;
// the sort is stable, so equal distances keep that order. Pure and
// deterministic.
func RankSpecies(query string, catalog []models.Species, limit int) []SpeciesCandidate {
	query = strings.TrimSpace(query)

	candidates := make([]SpeciesCandidate, 0, len(catalog))
	for _, s := range catalog {
		d := levenshtein.ComputeDistance(query, s.CompositeName())
		candidates = append(candidates, newCandidate(s, d))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// CloseSpeciesMatches returns the candidates within the ambiguity
// threshold, nearest first.
func CloseSpeciesMatches(query string, catalog []models.Species) []SpeciesCandidate {
	ranked := RankSpecies(query, catalog, 0)
	var close []SpeciesCandidate
	for _, c := range ranked {
		if c.Distance <= speciesMatchThreshold {
			close = append(close, c)
		}
	}
	return close
}
