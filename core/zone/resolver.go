// Package zone resolves shipment destinations to pricing zones.
// Matching is by country set plus optional postal-code patterns; ties
// resolve by zone-type specificity, then longest matching pattern.
package zone

import (
	"regexp"
	"sort"
	"strings"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Resolver maps (country, postal code) pairs to pricing zones
type Resolver struct {
	zones    []types.PricingZone
	patterns map[string][]*regexp.Regexp
}

// NewResolver compiles zone postal patterns and returns a resolver.
// An invalid pattern is a configuration error.
func NewResolver(zones []types.PricingZone) (*Resolver, error) {
	r := &Resolver{
		zones:    zones,
		patterns: make(map[string][]*regexp.Regexp, len(zones)),
	}
	for _, z := range zones {
		if !z.ZoneType.Valid() {
			return nil, errors.Configf("zone %s has unknown zone type %q", z.Code, z.ZoneType)
		}
		compiled := make([]*regexp.Regexp, 0, len(z.PostalCodePatterns))
		for _, p := range z.PostalCodePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, errors.Wrap(errors.TypeConfig, "zone "+z.Code+" has invalid postal pattern "+p, err)
			}
			compiled = append(compiled, re)
		}
		r.patterns[z.Code] = compiled
	}
	return r, nil
}

// candidate is a zone that matched the destination
type candidate struct {
	zone types.PricingZone
	// matchedLen is the length of the longest matching pattern source,
	// -1 when the zone matched on country alone
	matchedLen int
}

// Resolve finds the single pricing zone covering a destination
func (r *Resolver) Resolve(countryCode, postalCode string) (*types.PricingZone, error) {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(country) != 2 {
		return nil, errors.Validationf("country code %q is not ISO 3166-1 alpha-2", countryCode)
	}

	var candidates []candidate
	for _, z := range r.zones {
		if !containsCountry(z.Countries, country) {
			continue
		}
		res := r.patterns[z.Code]
		if len(res) == 0 {
			candidates = append(candidates, candidate{zone: z, matchedLen: -1})
			continue
		}
		best := -1
		for _, re := range res {
			if re.MatchString(postalCode) && len(re.String()) > best {
				best = len(re.String())
			}
		}
		if best >= 0 {
			candidates = append(candidates, candidate{zone: z, matchedLen: best})
		}
	}

	switch len(candidates) {
	case 0:
		return nil, errors.UnsupportedDestination(country, postalCode)
	case 1:
		z := candidates[0].zone
		return &z, nil
	}

	// Most specific zone type first, then longest matching pattern
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].zone.ZoneType.Specificity(), candidates[j].zone.ZoneType.Specificity()
		if si != sj {
			return si < sj
		}
		return candidates[i].matchedLen > candidates[j].matchedLen
	})

	top, next := candidates[0], candidates[1]
	if top.zone.ZoneType.Specificity() == next.zone.ZoneType.Specificity() &&
		top.matchedLen == next.matchedLen {
		codes := make([]string, 0, len(candidates))
		for _, c := range candidates {
			codes = append(codes, c.zone.Code)
		}
		return nil, errors.AmbiguousZone(country, postalCode, codes)
	}

	z := top.zone
	return &z, nil
}

func containsCountry(countries []string, country string) bool {
	for _, c := range countries {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}
