// Package states resolves US state names and postal codes against a fixed
// reference set: the 50 states plus the District of Columbia.
package states

import (
	"strings"

	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/errors"
)

// standard is the 50-state enumeration in alphabetical order by name
var standard = []domain.StateRef{
	{Code: "AL", Name: "Alabama"},
	{Code: "AK", Name: "Alaska"},
	{Code: "AZ", Name: "Arizona"},
	{Code: "AR", Name: "Arkansas"},
	{Code: "CA", Name: "California"},
	{Code: "CO", Name: "Colorado"},
	{Code: "CT", Name: "Connecticut"},
	{Code: "DE", Name: "Delaware"},
	{Code: "FL", Name: "Florida"},
	{Code: "GA", Name: "Georgia"},
	{Code: "HI", Name: "Hawaii"},
	{Code: "ID", Name: "Idaho"},
	{Code: "IL", Name: "Illinois"},
	{Code: "IN", Name: "Indiana"},
	{Code: "IA", Name: "Iowa"},
	{Code: "KS", Name: "Kansas"},
	{Code: "KY", Name: "Kentucky"},
	{Code: "LA", Name: "Louisiana"},
	{Code: "ME", Name: "Maine"},
	{Code: "MD", Name: "Maryland"},
	{Code: "MA", Name: "Massachusetts"},
	{Code: "MI", Name: "Michigan"},
	{Code: "MN", Name: "Minnesota"},
	{Code: "MS", Name: "Mississippi"},
	{Code: "MO", Name: "Missouri"},
	{Code: "MT", Name: "Montana"},
	{Code: "NE", Name: "Nebraska"},
	{Code: "NV", Name: "Nevada"},
	{Code: "NH", Name: "New Hampshire"},
	{Code: "NJ", Name: "New Jersey"},
	{Code: "NM", Name: "New Mexico"},
	{Code: "NY", Name: "New York"},
	{Code: "NC", Name: "North Carolina"},
	{Code: "ND", Name: "North Dakota"},
	{Code: "OH", Name: "Ohio"},
	{Code: "OK", Name: "Oklahoma"},
	{Code: "OR", Name: "Oregon"},
	{Code: "PA", Name: "Pennsylvania"},
	{Code: "RI", Name: "Rhode Island"},
	{Code: "SC", Name: "South Carolina"},
	{Code: "SD", Name: "South Dakota"},
	{Code: "TN", Name: "Tennessee"},
	{Code: "TX", Name: "Texas"},
	{Code: "UT", Name: "Utah"},
	{Code: "VT", Name: "Vermont"},
	{Code: "VA", Name: "Virginia"},
	{Code: "WA", Name: "Washington"},
	{Code: "WV", Name: "West Virginia"},
	{Code: "WI", Name: "Wisconsin"},
	{Code: "WY", Name: "Wyoming"},
}

// District is appended by hand: it is not a state but every source reports it.
var District = domain.StateRef{Code: "DC", Name: "District of Columbia"}

// Resolver maps between state codes and names. It is immutable once built
// and safe to share.
type Resolver struct {
	refs   []domain.StateRef
	byCode map[string]domain.StateRef
	byName map[string]domain.StateRef
}

// NewResolver builds the 51-entry reference set
func NewResolver() *Resolver {
	refs := make([]domain.StateRef, 0, len(standard)+1)
	refs = append(refs, standard...)
	refs = append(refs, District)

	r := &Resolver{
		refs:   refs,
		byCode: make(map[string]domain.StateRef, len(refs)),
		byName: make(map[string]domain.StateRef, len(refs)),
	}
	for _, ref := range refs {
		r.byCode[ref.Code] = ref
		r.byName[normalizeName(ref.Name)] = ref
	}
	return r
}

// ResolveByName returns the code for a state name
func (r *Resolver) ResolveByName(name string) (string, error) {
	ref, ok := r.byName[normalizeName(name)]
	if !ok {
		return "", errors.UnresolvedJoinKey("name", name)
	}
	return ref.Code, nil
}

// ResolveByCode returns the name for a state code
func (r *Resolver) ResolveByCode(code string) (string, error) {
	ref, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return "", errors.UnresolvedJoinKey("code", code)
	}
	return ref.Name, nil
}

// Canonical returns the canonical upper-case code if code is known
func (r *Resolver) Canonical(code string) (string, bool) {
	ref, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return ref.Code, ok
}

// All returns the reference set in order
func (r *Resolver) All() []domain.StateRef {
	return append([]domain.StateRef(nil), r.refs...)
}

// Len is the number of reference entries
func (r *Resolver) Len() int { return len(r.refs) }

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
