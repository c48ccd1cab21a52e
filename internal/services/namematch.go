package services

import (
	"strings"

	models "fleetops/vanlist/internal/models/gorm"
)

// MatchDriverName resolves an informal name string against a pool of driver
// records. Three tiers, first hit wins:
//
//  1. exact: case-insensitive full-string equality
//  2. last-name exact plus first-name prefix compatibility, accepted only
//     when a single candidate survives
//  3. every input token must be prefix-compatible with some candidate token,
//     first such candidate wins
//
// Returns nil when no tier produces a unique match. Callers remove matched
// drivers from the pool so one record cannot absorb two roster names.
func MatchDriverName(name string, pool []models.Driver) *models.Driver {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" || len(pool) == 0 {
		return nil
	}

	// Tier 1: exact
	for i := range pool {
		if strings.ToLower(strings.TrimSpace(pool[i].Name)) == needle {
			return &pool[i]
		}
	}

	inTokens := strings.Fields(needle)
	if len(inTokens) == 0 {
		return nil
	}
	inFirst, inLast := inTokens[0], inTokens[len(inTokens)-1]

	// Tier 2: last name exact, first name prefix-compatible, unique survivor
	var survivor *models.Driver
	survivors := 0
	for i := range pool {
		candTokens := strings.Fields(strings.ToLower(pool[i].Name))
		if len(candTokens) == 0 {
			continue
		}
		candFirst, candLast := candTokens[0], candTokens[len(candTokens)-1]
		if candLast == inLast && tokensSharePrefix(candFirst, inFirst) {
			survivor = &pool[i]
			survivors++
		}
	}
	if survivors == 1 {
		return survivor
	}

	// Tier 3: every input token prefix-compatible with some candidate token
	for i := range pool {
		candTokens := strings.Fields(strings.ToLower(pool[i].Name))
		if len(candTokens) == 0 {
			continue
		}
		all := true
		for _, it := range inTokens {
			found := false
			for _, ct := range candTokens {
				if tokensSharePrefix(it, ct) {
					found = true
					break
				}
			}
			if !found {
				all = false
				break
			}
		}
		if all {
			return &pool[i]
		}
	}

	return nil
}

// tokensSharePrefix reports whether one lowercase token is a prefix of the
// other (equality included).
func tokensSharePrefix(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
