package pipeline

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"foodinspect/internal/domain/inspection"
)

// CityMatch is the tagged result of one canonicalization attempt. Matched
// reports whether the similarity threshold was met; Canonical holds the
// value the row should carry either way (trusted spelling when matched,
// cleaned input otherwise).
type CityMatch struct {
	Input     string
	Cleaned   string
	Canonical string
	Score     int
	Matched   bool
}

// Canonicalizer corrects free-text city names against a fixed trusted list
// using similarity ranking. Best-effort: values below threshold stay as
// their cleaned form and may still be inconsistent duplicates.
type Canonicalizer struct {
	trusted   []string
	threshold int
}

func NewCanonicalizer(trusted []string, threshold int) *Canonicalizer {
	cleaned := make([]string, 0, len(trusted))
	for _, city := range trusted {
		if c := inspection.CleanCityName(city); c != "" {
			cleaned = append(cleaned, c)
		}
	}

	return &Canonicalizer{
		trusted:   cleaned,
		threshold: threshold,
	}
}

// Match cleans city and ranks it against the trusted list. Empty input (or
// input that cleans to empty) passes through unmatched and unchanged.
func (c *Canonicalizer) Match(city string) CityMatch {
	match := CityMatch{Input: city, Canonical: city}

	cleaned := inspection.CleanCityName(city)
	match.Cleaned = cleaned
	if cleaned == "" {
		return match
	}
	match.Canonical = cleaned

	for _, candidate := range c.trusted {
		score := fuzzy.Ratio(cleaned, candidate)
		if score > match.Score {
			match.Score = score
			if score >= c.threshold {
				match.Canonical = candidate
				match.Matched = true
			}
		}
	}

	return match
}
