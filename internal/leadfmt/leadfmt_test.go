package leadfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLead(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"fully bold lead", "<p><strong>Abre com destaque.</strong></p><p>Segue normal.</p>", true},
		{"b tag accepted", "<p><b>Abre com destaque.</b></p>", true},
		{"bold with nested markup", "<p><strong>Abre <em>com</em> destaque.</strong></p>", true},
		{"surrounding whitespace", "<p>\n  <strong>Abre.</strong>\n</p>", true},
		{"plain lead", "<p>Sem destaque nenhum.</p>", false},
		{"partially bold lead", "<p><strong>Abre</strong> mas continua solto.</p>", false},
		{"bold only later", "<p>Primeiro solto.</p><p><strong>Segundo em negrito.</strong></p>", false},
		{"plain text without markup", "Texto corrido sem parágrafo.", false},
		{"empty body", "", true},
		{"empty first paragraph", "<p></p><p>resto</p>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLead(tt.body))
		})
	}
}

func TestAutoFixLead_ProducesValidBody(t *testing.T) {
	bodies := []string{
		"<p>Sem destaque nenhum.</p>",
		"<p><strong>Abre</strong> mas continua solto.</p>",
		"<p>Primeiro.</p><p>Segundo.</p>",
		"Texto corrido sem parágrafo.",
		"<p><strong>Já válido.</strong></p>",
		"",
	}

	for _, body := range bodies {
		fixed := AutoFixLead(body)
		assert.True(t, ValidateLead(fixed), "body %q -> %q", body, fixed)
	}
}

func TestAutoFixLead_Idempotent(t *testing.T) {
	bodies := []string{
		"<p>Sem destaque nenhum.</p>",
		"<p><strong>Abre</strong> mas continua solto.</p>",
		"Texto corrido sem parágrafo.",
		"<p><strong>Já válido.</strong></p><p>Resto intacto.</p>",
	}

	for _, body := range bodies {
		once := AutoFixLead(body)
		twice := AutoFixLead(once)
		assert.Equal(t, once, twice, "body %q", body)
	}
}

func TestAutoFixLead_ValidBodyUnchanged(t *testing.T) {
	body := "<p><strong>Já válido.</strong></p><p>Com <em>markup</em> depois.</p>"
	assert.Equal(t, body, AutoFixLead(body))
}

func TestAutoFixLead_OnlyFirstParagraphChanges(t *testing.T) {
	body := "<p>Abre solto.</p><p>Segundo com <a href=\"https://x.com\">link</a>.</p>"
	fixed := AutoFixLead(body)

	assert.Contains(t, fixed, "<p><strong>Abre solto.</strong></p>")
	assert.Contains(t, fixed, "<p>Segundo com <a href=\"https://x.com\">link</a>.</p>")
}
