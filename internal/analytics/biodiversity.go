package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/tphakala/wildlife-analytics/internal/detection"
)

// dominantSpeciesCount is the number of species listed as dominant in a report
const dominantSpeciesCount = 3

// SpeciesCount pairs a species name with its detection count
type SpeciesCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// BiodiversityMetrics summarizes species diversity over a detection window
type BiodiversityMetrics struct {
	ShannonIndex    float64        `json:"shannon_index" yaml:"shannon_index"`
	SimpsonIndex    float64        `json:"simpson_index" yaml:"simpson_index"`
	SpeciesRichness int            `json:"species_richness" yaml:"species_richness"`
	SpeciesEvenness float64        `json:"species_evenness" yaml:"species_evenness"`
	DominantSpecies []SpeciesCount `json:"dominant_species" yaml:"dominant_species"`
	RareSpecies     []string       `json:"rare_species" yaml:"rare_species"`
}

// CountBySpecies returns detection counts keyed by species display name
func CountBySpecies(events []detection.DetectionEvent) map[string]int {
	counts := make(map[string]int)
	for i := range events {
		counts[events[i].DisplayName()]++
	}
	return counts
}

// positiveTotals returns the number of species with a positive count and the sum of those counts
func positiveTotals(counts map[string]int) (species, total int) {
	for _, c := range counts {
		if c > 0 {
			species++
			total += c
		}
	}
	return species, total
}

// ShannonIndex returns H = -Σ p·ln(p) over species with a positive count.
// Empty or all-zero input yields 0.
func ShannonIndex(counts map[string]int) float64 {
	_, total := positiveTotals(counts)
	if total == 0 {
		return 0
	}

	h := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	// A single species gives -1·ln(1) = -0
	return math.Max(0, h)
}

// SimpsonIndex returns Simpson's diversity 1 - Σ n(n-1) / N(N-1).
// Totals of 0 or 1 yield 0.
func SimpsonIndex(counts map[string]int) float64 {
	_, total := positiveTotals(counts)
	if total <= 1 {
		return 0
	}

	sum := 0.0
	for _, c := range counts {
		if c > 0 {
			sum += float64(c) * float64(c-1)
		}
	}
	return 1 - sum/(float64(total)*float64(total-1))
}

// SpeciesEvenness returns Pielou's J = H / ln(S), clamped to [0, 1].
// One species or none yields 1.
func SpeciesEvenness(counts map[string]int) float64 {
	species, _ := positiveTotals(counts)
	if species <= 1 {
		return 1
	}

	lnS := math.Log(float64(species))
	if lnS == 0 {
		return 0
	}
	return math.Min(1, math.Max(0, ShannonIndex(counts)/lnS))
}

// SpeciesRichness returns the number of species with at least one detection
func SpeciesRichness(counts map[string]int) int {
	species, _ := positiveTotals(counts)
	return species
}

// DominantSpecies returns the n most detected species, ties ordered by name
func DominantSpecies(counts map[string]int, n int) []SpeciesCount {
	ranked := rankSpecies(counts)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RareSpecies returns the names of species detected exactly once, sorted
func RareSpecies(counts map[string]int) []string {
	rare := make([]string, 0)
	for name, c := range counts {
		if c == 1 {
			rare = append(rare, name)
		}
	}
	slices.Sort(rare)
	return rare
}

// rankSpecies orders species with positive counts by count descending, then name
func rankSpecies(counts map[string]int) []SpeciesCount {
	ranked := make([]SpeciesCount, 0, len(counts))
	for name, c := range counts {
		if c > 0 {
			ranked = append(ranked, SpeciesCount{Name: name, Count: c})
		}
	}
	slices.SortFunc(ranked, func(a, b SpeciesCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return ranked
}

// AnalyzeBiodiversity computes all diversity metrics for a species-count mapping
func AnalyzeBiodiversity(counts map[string]int) BiodiversityMetrics {
	return BiodiversityMetrics{
		ShannonIndex:    ShannonIndex(counts),
		SimpsonIndex:    SimpsonIndex(counts),
		SpeciesRichness: SpeciesRichness(counts),
		SpeciesEvenness: SpeciesEvenness(counts),
		DominantSpecies: DominantSpecies(counts, dominantSpeciesCount),
		RareSpecies:     RareSpecies(counts),
	}
}
