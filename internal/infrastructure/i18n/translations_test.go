package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatorLocalizes(t *testing.T) {
	tr := NewTranslator("en")

	assert.Equal(t, "This event is closed.", tr.T("en", "event.closed", nil))
	assert.Equal(t, "Cet événement est clôturé.", tr.T("fr", "event.closed", nil))
}

func TestTranslatorTemplateData(t *testing.T) {
	tr := NewTranslator("en")

	msg := tr.T("en", "event.code", map[string]any{"Title": "siege", "Code": "4242"})
	assert.Contains(t, msg, "siege")
	assert.Contains(t, msg, "4242")
}

func TestTranslatorFallsBackToDefaultLocale(t *testing.T) {
	tr := NewTranslator("en")

	assert.Equal(t, "This event is closed.", tr.T("de", "event.closed", nil))
	assert.Equal(t, "This event is closed.", tr.T("", "event.closed", nil))
}

func TestTranslatorUnknownKeyReturnsKey(t *testing.T) {
	tr := NewTranslator("en")

	assert.Equal(t, "no.such.key", tr.T("en", "no.such.key", nil))
	assert.Equal(t, "", tr.T("en", "", nil))
}
