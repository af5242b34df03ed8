package domain

import "strings"

// Identity represents a directory-listed mailbox eligible for signature synchronization.
// Identities are immutable once fetched and scoped to a single run.
type Identity struct {
	Email       string `json:"email"`
	GivenName   string `json:"given_name,omitempty"`
	FamilyName  string `json:"family_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Phone       string `json:"phone,omitempty"`
	OrgUnitPath string `json:"org_unit_path,omitempty"`
	Archived    bool   `json:"archived"`
	Suspended   bool   `json:"suspended"`
}

// EmailDomain returns the lowercased domain part of the identity's email,
// or an empty string when the address has no domain part.
func (i Identity) EmailDomain() string {
	at := strings.LastIndex(i.Email, "@")
	if at < 0 || at == len(i.Email)-1 {
		return ""
	}
	return strings.ToLower(i.Email[at+1:])
}
