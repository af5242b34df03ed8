package domain

import "strings"

// FilterRules determines which directory identities are eligible for synchronization.
//
// When IncludedUsers is non-empty it becomes the sole determinant of inclusion
// and overrides the archived, suspended and exclusion rules. The domain check is
// unconditional: an identity outside the configured domain is never included.
type FilterRules struct {
	Domain           string
	IncludedUsers    map[string]struct{}
	ExcludedUsers    map[string]struct{}
	ExcludedOrgUnits []string
	IncludeArchived  bool
	IncludeSuspended bool
}

// NewFilterRules normalizes the raw configuration lists into a rule set.
// Emails are compared case-insensitively.
func NewFilterRules(domain string, included, excluded, excludedOUs []string, includeArchived, includeSuspended bool) FilterRules {
	rules := FilterRules{
		Domain:           strings.ToLower(strings.TrimSpace(domain)),
		IncludedUsers:    emailSet(included),
		ExcludedUsers:    emailSet(excluded),
		IncludeArchived:  includeArchived,
		IncludeSuspended: includeSuspended,
	}
	for _, ou := range excludedOUs {
		ou = strings.TrimSpace(ou)
		if ou == "" {
			continue
		}
		// org unit paths always start with "/"; accept configs that omit it
		if !strings.HasPrefix(ou, "/") {
			ou = "/" + ou
		}
		rules.ExcludedOrgUnits = append(rules.ExcludedOrgUnits, ou)
	}
	return rules
}

// HasIncludeOverride reports whether the explicit inclusion list is active.
func (r FilterRules) HasIncludeOverride() bool {
	return len(r.IncludedUsers) > 0
}

// IncludesUser reports whether the email is on the explicit inclusion list.
func (r FilterRules) IncludesUser(email string) bool {
	_, ok := r.IncludedUsers[strings.ToLower(email)]
	return ok
}

// ExcludesUser reports whether the email is on the exclusion list.
func (r FilterRules) ExcludesUser(email string) bool {
	_, ok := r.ExcludedUsers[strings.ToLower(email)]
	return ok
}

// ExcludesOrgUnit reports whether the org unit path matches any excluded
// prefix. Prefixes are normalized to a leading "/" at construction, so a
// configured "Test" excludes "/Test/Interns". Matching is plain prefix
// matching: an excluded "/Test" also matches "/Testing". This mirrors the
// behavior existing configurations rely on.
func (r FilterRules) ExcludesOrgUnit(path string) bool {
	for _, prefix := range r.ExcludedOrgUnits {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func emailSet(emails []string) map[string]struct{} {
	if len(emails) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}
