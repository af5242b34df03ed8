// Package filter selects the directory identities eligible for signature
// synchronization. Filtering is a pure predicate pass: no side effects, and
// the output preserves the input order.
package filter

import (
	"github.com/mailsig/sigsync/domain"
)

// Filter applies the rule set to the raw identity list and returns the emails
// of eligible identities in input order.
//
// The domain check is unconditional. When the explicit inclusion list is
// non-empty it is the sole determinant of inclusion and bypasses the archived,
// suspended and exclusion rules; otherwise exclusions apply cumulatively with
// exclude-wins semantics.
//
// An empty rule domain is a configuration precondition failure and is reported
// once, before any identity is inspected.
func Filter(identities []domain.Identity, rules domain.FilterRules) ([]string, error) {
	if rules.Domain == "" {
		return nil, domain.ErrMissingDomain
	}

	var eligible []string
	for _, identity := range identities {
		if identity.EmailDomain() != rules.Domain {
			continue
		}
		if rules.HasIncludeOverride() {
			if rules.IncludesUser(identity.Email) {
				eligible = append(eligible, identity.Email)
			}
			continue
		}
		if identity.Archived && !rules.IncludeArchived {
			continue
		}
		if identity.Suspended && !rules.IncludeSuspended {
			continue
		}
		if rules.ExcludesUser(identity.Email) {
			continue
		}
		if rules.ExcludesOrgUnit(identity.OrgUnitPath) {
			continue
		}
		eligible = append(eligible, identity.Email)
	}
	return eligible, nil
}
