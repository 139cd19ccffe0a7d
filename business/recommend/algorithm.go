package recommend

import "strings"

// Algorithm is the closed set of strategies the engine dispatches on.
type Algorithm string

const (
	AlgorithmHybrid        Algorithm = "hybrid"
	AlgorithmPopular       Algorithm = "popular"
	AlgorithmContent       Algorithm = "content"
	AlgorithmCollaborative Algorithm = "collaborative"
	AlgorithmLatentFactor  Algorithm = "svd"

	// strategyRandom is the terminal fallback. Callers cannot request it.
	strategyRandom Algorithm = "random"
)

var algorithmAliases = map[string]Algorithm{
	"hybrid":          AlgorithmHybrid,
	"weighted_hybrid": AlgorithmHybrid,
	"diverse_hybrid":  AlgorithmHybrid,
	"popular":         AlgorithmPopular,
	"popularity":      AlgorithmPopular,
	"content":         AlgorithmContent,
	"content_based":   AlgorithmContent,
	"collaborative":   AlgorithmCollaborative,
	"cf":              AlgorithmCollaborative,
	"svd":             AlgorithmLatentFactor,
	"latent":          AlgorithmLatentFactor,
	"latent_factor":   AlgorithmLatentFactor,
}

// ParseAlgorithm maps user input to an Algorithm. Unknown names map to
// AlgorithmHybrid and ok is false.
func ParseAlgorithm(s string) (a Algorithm, ok bool) {
	a, ok = algorithmAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return AlgorithmHybrid, false
	}
	return a, true
}

func (a Algorithm) String() string {
	return string(a)
}
