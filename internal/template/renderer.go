// Package template renders signature HTML by literal placeholder substitution.
// This is deliberately not a general template language: every occurrence of a
// recognized bracketed token is replaced globally, and anything else passes
// through untouched.
package template

import (
	"regexp"
	"strings"

	"github.com/mailsig/sigsync/domain"
)

// Recognized placeholder tokens. Tokens in the template that are not part of
// this vocabulary are left as-is; recognized tokens with no value render as
// an empty string, never as the literal token.
const (
	TokenFirstName   = "[FIRST_NAME]"
	TokenLastName    = "[LAST_NAME]"
	TokenFullName    = "[FULL_NAME]"
	TokenEmail       = "[EMAIL]"
	TokenJobTitle    = "[JOB_TITLE]"
	TokenPhone       = "[PHONE]"
	TokenCompany     = "[COMPANY]"
	TokenWebsite     = "[WEBSITE]"
	TokenLogoURL     = "[LOGO_URL]"
	TokenPrimaryFont = "[PRIMARY_FONT]"
	TokenAccentColor = "[ACCENT_COLOR]"
)

var knownTokens = []string{
	TokenFirstName,
	TokenLastName,
	TokenFullName,
	TokenEmail,
	TokenJobTitle,
	TokenPhone,
	TokenCompany,
	TokenWebsite,
	TokenLogoURL,
	TokenPrimaryFont,
	TokenAccentColor,
}

// Context maps placeholder tokens to their replacement values for one identity.
type Context map[string]string

var singleQuotedFont = regexp.MustCompile(`'([^']*)'`)

// NormalizeFontQuotes rewrites single-quoted font family names to their
// double-quoted equivalents so repeated renders of the same logical value are
// byte-identical regardless of how an author quoted it upstream. Change
// detection depends on this.
func NormalizeFontQuotes(value string) string {
	return singleQuotedFont.ReplaceAllString(value, `"$1"`)
}

// Render substitutes every recognized token in templateText with its context
// value. The font-family token is quote-normalized before substitution.
// Rendering is applied exactly once per (template, context) pair.
func Render(templateText string, ctx Context) string {
	out := templateText
	for _, token := range knownTokens {
		value := ctx[token]
		if token == TokenPrimaryFont {
			value = NormalizeFontQuotes(value)
		}
		out = strings.ReplaceAll(out, token, value)
	}
	return out
}

// BuildContext merges per-identity attributes over organization branding and
// template defaults. Identity values win.
func BuildContext(identity domain.Identity, branding Branding) Context {
	fullName := identity.FullName
	if fullName == "" {
		fullName = strings.TrimSpace(identity.GivenName + " " + identity.FamilyName)
	}
	return Context{
		TokenFirstName:   identity.GivenName,
		TokenLastName:    identity.FamilyName,
		TokenFullName:    fullName,
		TokenEmail:       identity.Email,
		TokenJobTitle:    identity.JobTitle,
		TokenPhone:       identity.Phone,
		TokenCompany:     branding.CompanyName,
		TokenWebsite:     branding.Website,
		TokenLogoURL:     branding.LogoURL,
		TokenPrimaryFont: branding.PrimaryFont,
		TokenAccentColor: branding.AccentColor,
	}
}

// Branding holds the organization-wide substitution values. It mirrors
// config.BrandingConfig without importing the config package here.
type Branding struct {
	CompanyName string
	Website     string
	LogoURL     string
	PrimaryFont string
	AccentColor string
}

// SignatureBuilder renders the desired signature for identities of one run.
type SignatureBuilder struct {
	templateText string
	branding     Branding
	identities   map[string]domain.Identity
}

// NewSignatureBuilder indexes the run's identities by lowercased email.
func NewSignatureBuilder(templateText string, branding Branding, identities []domain.Identity) *SignatureBuilder {
	index := make(map[string]domain.Identity, len(identities))
	for _, id := range identities {
		index[strings.ToLower(id.Email)] = id
	}
	return &SignatureBuilder{
		templateText: templateText,
		branding:     branding,
		identities:   index,
	}
}

// Render produces the desired signature HTML for the given identity email.
func (b *SignatureBuilder) Render(email string) (string, error) {
	identity, ok := b.identities[strings.ToLower(email)]
	if !ok {
		return "", domain.WrapError(domain.ErrCodePermanentWrite, "identity not present in directory snapshot", nil)
	}
	return Render(b.templateText, BuildContext(identity, b.branding)), nil
}
