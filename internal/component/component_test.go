package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livefir/i18nprep/internal/markup"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"import link", `<link rel="import" href="../i18n-behavior/i18n-behavior.html">`, true},
		{"stylesheet", `<link rel="stylesheet" href="../i18n-behavior/i18n-behavior.html">`, false},
		{"other import", `<link rel="import" href="../polymer/polymer.html">`, false},
		{"no href", `<link rel="import">`, false},
		{"none", `<p>text</p>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := markup.ParseString(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Eligible(doc, DefaultMarker))
		})
	}
}

func TestTemplates(t *testing.T) {
	doc, err := markup.ParseString(`<html><head><template id="in-head"></template></head><body>
<dom-module id="x-app"><template><template is="dom-repeat"></template></template></dom-module>
<div><template id="nested"></template><template is="i18n-dom-bind" id="bound"></template></div>
<template id="top"></template>
</body></html>`)
	require.NoError(t, err)

	var ids []string
	for _, tmpl := range Templates(doc) {
		id, _ := ID(tmpl)
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"in-head", "x-app", "bound", "top"}, ids)
}

func TestID(t *testing.T) {
	doc, err := markup.ParseString(`<dom-module id="x-app"><template></template></dom-module><dom-module id="x-b"><template id="x-b-tmpl"></template></dom-module>`)
	require.NoError(t, err)

	templates := Templates(doc)
	require.Len(t, templates, 2)

	id, own := ID(templates[0])
	assert.Equal(t, "x-app", id)
	assert.False(t, own)

	id, own = ID(templates[1])
	assert.Equal(t, "x-b-tmpl", id)
	assert.True(t, own)
}
