package verify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livefir/i18nprep/internal/bundle"
	"github.com/livefir/i18nprep/internal/component"
	"github.com/livefir/i18nprep/internal/extract"
	"github.com/livefir/i18nprep/internal/markup"
	"github.com/livefir/i18nprep/internal/registry"
)

const page = `<dom-module id="x-app"><template>
  <h1 id="title">Welcome</h1>
  <div id="card"><span>One</span> and <b>two</b> more</div>
  <input placeholder="Name {{user}}">
  <input placeholder="Search">
  <i18n-format><span>{1} of {2}</span><span>{{count}}</span><span>items</span></i18n-format>
</template></dom-module>`

func rewritten(t *testing.T) (*markup.Node, *bundle.Bundle) {
	t.Helper()
	doc, err := markup.ParseString(page)
	require.NoError(t, err)

	store := registry.NewStore()
	require.NoError(t, store.LoadMap(map[string]any{"input": map[string]any{"placeholder": true}}))

	b := bundle.New()
	e := extract.New(extract.WithRewrite(true), extract.WithResolver(store))
	tmpl := component.Templates(doc)[0]
	stats := e.Extract(context.Background(), tmpl, b)
	require.Positive(t, stats.Messages)
	return doc, b
}

func TestRewrittenDocumentResolves(t *testing.T) {
	doc, b := rewritten(t)

	report := Check(doc, "", map[string]*bundle.Bundle{"x-app": b})
	assert.True(t, report.OK(), "unresolved: %v", report.Unresolved)
	assert.Equal(t, 1, report.Components)
	assert.GreaterOrEqual(t, report.References, 5)
}

func TestUnresolvedReferences(t *testing.T) {
	doc, _ := rewritten(t)

	b := bundle.New()
	b.Set("title", "Welcome")
	report := Check(doc, "", map[string]*bundle.Bundle{"x-app": b})
	assert.False(t, report.OK())
	require.NotEmpty(t, report.Unresolved)
	for _, ref := range report.Unresolved {
		assert.NotEqual(t, "text.title", ref.Key)
		assert.Equal(t, "x-app", ref.Component)
	}
}

func TestMissingBundle(t *testing.T) {
	doc, _ := rewritten(t)

	report := Check(doc, "", map[string]*bundle.Bundle{})
	assert.Equal(t, []string{"x-app"}, report.MissingBundles)
	assert.False(t, report.OK())
}

func TestReferencesSkipEmbeddedBlock(t *testing.T) {
	doc, err := markup.ParseString(`<dom-module id="x-app"><template><p>{{text.p}}</p><p title="{{model.p_1.title}}">{{name}}</p>` +
		`<template id="localizable-text"><json-data>{"p":"{{text.other}}"}</json-data></template></template></dom-module>`)
	require.NoError(t, err)

	refs := References("x-app", component.Templates(doc)[0])
	require.Len(t, refs, 2)
	assert.Equal(t, Reference{Component: "x-app", Key: "text.p", Location: "<p>"}, refs[0])
	assert.Equal(t, Reference{Component: "x-app", Key: "model.p_1.title", Location: "<p title>"}, refs[1])
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"card:span": "One",
		"msg":       []any{"{1} of {2}", "{{count}}", "items"},
		"model":     map[string]any{"input_2": map[string]any{"placeholder": "Search"}},
	}
	tests := []struct {
		key  string
		want any
		ok   bool
	}{
		{"text.card:span", "One", true},
		{"text.msg.2", "items", true},
		{"model.input_2.placeholder", "Search", true},
		{"text.msg.7", nil, false},
		{"text.missing", nil, false},
		{"other.key", nil, false},
		{"text", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Lookup(data, tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery(t *testing.T) {
	b := bundle.New()
	b.Set("model.chart.cols", []any{"Year", "Sales"})

	got, err := Query(b, "$.model.chart.cols[1]")
	require.NoError(t, err)
	assert.Equal(t, []any{"Sales"}, got)

	_, err = Query(b, "$.x[1")
	assert.Error(t, err)
}
