package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsig/sigsync/domain"
)

func TestRenderReplacesAllOccurrences(t *testing.T) {
	tpl := `<p>[FULL_NAME]</p><a href="mailto:[EMAIL]">[EMAIL]</a>`
	out := Render(tpl, Context{
		TokenFullName: "Ada Lovelace",
		TokenEmail:    "ada@x.com",
	})
	assert.Equal(t, `<p>Ada Lovelace</p><a href="mailto:ada@x.com">ada@x.com</a>`, out)
}

func TestRenderMissingValueBecomesEmpty(t *testing.T) {
	out := Render(`<span>[JOB_TITLE]</span>`, Context{})
	assert.Equal(t, `<span></span>`, out)
}

func TestRenderUnrecognizedTokenPassesThrough(t *testing.T) {
	out := Render(`[FULL_NAME] [CUSTOM_FIELD]`, Context{TokenFullName: "Ada"})
	assert.Equal(t, `Ada [CUSTOM_FIELD]`, out)
}

func TestRenderNormalizesFontQuotes(t *testing.T) {
	tpl := `font-family: [PRIMARY_FONT];`
	out := Render(tpl, Context{TokenPrimaryFont: "'Segoe UI', Arial"})
	assert.Equal(t, `font-family: "Segoe UI", Arial;`, out)

	// a double-quoted author value renders byte-identically
	out2 := Render(tpl, Context{TokenPrimaryFont: `"Segoe UI", Arial`})
	assert.Equal(t, out, out2)
}

func TestNormalizeFontQuotes(t *testing.T) {
	assert.Equal(t, `"Segoe UI", "Open Sans", Arial`, NormalizeFontQuotes(`'Segoe UI', 'Open Sans', Arial`))
	assert.Equal(t, `Arial, sans-serif`, NormalizeFontQuotes(`Arial, sans-serif`))
}

func TestBuildContextFullNameFallback(t *testing.T) {
	ctx := BuildContext(domain.Identity{
		Email:      "ada@x.com",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
	}, Branding{CompanyName: "Analytical Engines"})
	assert.Equal(t, "Ada Lovelace", ctx[TokenFullName])
	assert.Equal(t, "Analytical Engines", ctx[TokenCompany])
}

func TestSignatureBuilderRender(t *testing.T) {
	builder := NewSignatureBuilder(
		`<p>[FULL_NAME] - [COMPANY]</p>`,
		Branding{CompanyName: "Acme"},
		[]domain.Identity{{Email: "Ada@X.com", FullName: "Ada Lovelace"}},
	)

	out, err := builder.Render("ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, `<p>Ada Lovelace - Acme</p>`, out)

	_, err = builder.Render("ghost@x.com")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodePermanentWrite))
}
