package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
)

func identity(email, ou string) domain.Identity {
	return domain.Identity{Email: email, OrgUnitPath: ou}
}

func rules(opts ...func(*ruleInput)) domain.FilterRules {
	in := ruleInput{domain: "x.com"}
	for _, opt := range opts {
		opt(&in)
	}
	return domain.NewFilterRules(in.domain, in.included, in.excluded, in.excludedOUs, in.archived, in.suspended)
}

type ruleInput struct {
	domain      string
	included    []string
	excluded    []string
	excludedOUs []string
	archived    bool
	suspended   bool
}

func TestFilterMissingDomain(t *testing.T) {
	_, err := Filter([]domain.Identity{identity("a@x.com", "/")}, domain.FilterRules{})
	require.ErrorIs(t, err, domain.ErrMissingDomain)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	ids := []domain.Identity{
		identity("c@x.com", "/"),
		identity("a@x.com", "/"),
		identity("b@x.com", "/"),
	}
	out, err := Filter(ids, rules())
	require.NoError(t, err)
	assert.Equal(t, []string{"c@x.com", "a@x.com", "b@x.com"}, out)
}

func TestFilterDomainMismatchIsUnconditional(t *testing.T) {
	ids := []domain.Identity{
		identity("a@x.com", "/"),
		identity("b@other.com", "/"),
	}
	out, err := Filter(ids, rules(func(in *ruleInput) {
		in.included = []string{"b@other.com"}
	}))
	require.NoError(t, err)
	// even an explicit inclusion cannot pull in a foreign-domain identity
	assert.Empty(t, out)
}

func TestFilterArchivedAndSuspended(t *testing.T) {
	archived := identity("a@x.com", "/")
	archived.Archived = true
	suspended := identity("b@x.com", "/")
	suspended.Suspended = true
	active := identity("c@x.com", "/")

	out, err := Filter([]domain.Identity{archived, suspended, active}, rules())
	require.NoError(t, err)
	assert.Equal(t, []string{"c@x.com"}, out)

	out, err = Filter([]domain.Identity{archived, suspended, active}, rules(func(in *ruleInput) {
		in.archived = true
		in.suspended = true
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, out)
}

func TestFilterIncludeOverrideBypassesOtherRules(t *testing.T) {
	suspended := identity("a@x.com", "/Sales")
	suspended.Suspended = true

	out, err := Filter([]domain.Identity{suspended, identity("b@x.com", "/")}, rules(func(in *ruleInput) {
		in.included = []string{"a@x.com"}
		in.excluded = []string{"a@x.com"}
		in.excludedOUs = []string{"/Sales"}
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, out)
}

func TestFilterExcludedUsers(t *testing.T) {
	out, err := Filter([]domain.Identity{
		identity("a@x.com", "/"),
		identity("b@x.com", "/"),
	}, rules(func(in *ruleInput) {
		in.excluded = []string{"B@X.COM"}
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, out)
}

func TestFilterExcludedOrgUnitPrefix(t *testing.T) {
	out, err := Filter([]domain.Identity{
		identity("a@x.com", "/Test/Interns"),
		identity("b@x.com", "/Testing"),
		identity("c@x.com", "/Sales"),
	}, rules(func(in *ruleInput) {
		in.excludedOUs = []string{"/Test"}
	}))
	require.NoError(t, err)
	// plain prefix matching: "/Test" also excludes the sibling "/Testing"
	assert.Equal(t, []string{"c@x.com"}, out)
}

func TestFilterExcludedOrgUnitWithoutLeadingSlash(t *testing.T) {
	out, err := Filter([]domain.Identity{
		identity("a@x.com", "/Test/Interns"),
		identity("b@x.com", "/Testing"),
		identity("c@x.com", "/Sales"),
	}, rules(func(in *ruleInput) {
		in.excludedOUs = []string{"Test"}
	}))
	require.NoError(t, err)
	// a slash-less "Test" is normalized to "/Test" and excludes the same paths
	assert.Equal(t, []string{"c@x.com"}, out)
}

func TestFilterEmptyInput(t *testing.T) {
	out, err := Filter(nil, rules())
	require.NoError(t, err)
	assert.Empty(t, out)
}
