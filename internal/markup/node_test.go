package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplateContent(t *testing.T) {
	doc, err := ParseString(`<dom-module id="x-app"><template><span>Hello</span> world</template></dom-module>`)
	require.NoError(t, err)

	tmpl := Query(doc, HasTagName("template"))
	require.NotNil(t, tmpl)
	require.Len(t, tmpl.Children, 1)

	content := tmpl.Content()
	require.NotNil(t, content)
	assert.Equal(t, FragmentNode, content.Kind)
	assert.Equal(t, "#document-fragment", content.Name())
	require.Len(t, content.Children, 2)
	assert.Equal(t, "span", content.Children[0].Name())
	assert.Equal(t, "#text", content.Children[1].Name())
	assert.Equal(t, "dom-module", tmpl.Parent.Tag)
}

func TestRenderRoundTrip(t *testing.T) {
	src := `<html><head></head><body><dom-module id="x"><template><p title="t">a &amp; b</p></template></dom-module></body></html>`
	doc, err := ParseString(src)
	require.NoError(t, err)

	out, err := RenderString(doc)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRenderFragment(t *testing.T) {
	frag := NewFragment()
	span := NewElement("span")
	span.SetTextContent("{{text.msg}}")
	frag.AppendChild(span)
	frag.AppendChild(NewText(" tail"))

	out, err := RenderString(frag)
	require.NoError(t, err)
	assert.Equal(t, "<span>{{text.msg}}</span> tail", out)
}

func TestTextContent(t *testing.T) {
	doc, err := ParseString(`<div id="d">one <b>two</b><!-- c --> three</div>`)
	require.NoError(t, err)

	div := Query(doc, HasAttributeValue("id", "d"))
	require.NotNil(t, div)
	assert.Equal(t, "one two three", div.TextContent())

	div.SetTextContent("replaced")
	require.Len(t, div.Children, 1)
	assert.True(t, div.Children[0].IsText())
	assert.Equal(t, "replaced", div.TextContent())
}

func TestAttributes(t *testing.T) {
	el := NewElement("input")
	assert.False(t, el.HasAttribute("placeholder"))

	el.SetAttribute("placeholder", "Name")
	el.SetAttribute("lang", "")
	v, ok := el.Attribute("placeholder")
	assert.True(t, ok)
	assert.Equal(t, "Name", v)
	assert.True(t, el.HasAttribute("lang"))
	assert.Equal(t, "", el.AttributeValue("lang"))

	el.SetAttribute("placeholder", "Other")
	assert.Len(t, el.Attrs, 2)
	assert.Equal(t, "Other", el.AttributeValue("placeholder"))

	el.RemoveAttribute("placeholder")
	assert.False(t, el.HasAttribute("placeholder"))
	assert.Len(t, el.Attrs, 1)
}

func TestChildMutation(t *testing.T) {
	parent := NewElement("div")
	a := NewText("a")
	b := NewElement("b")
	parent.AppendChild(a)
	parent.AppendChild(b)

	other := NewElement("p")
	other.AppendChild(b)
	assert.Len(t, parent.Children, 1)
	assert.Same(t, other, b.Parent)

	repl := NewElement("i18n-format")
	parent.ReplaceChild(a, repl)
	assert.Same(t, repl, parent.FirstChild())
	assert.Nil(t, a.Parent)

	parent.RemoveChildren()
	assert.Empty(t, parent.Children)
	assert.Nil(t, repl.Parent)
}

func TestNewTemplateHasContent(t *testing.T) {
	tmpl := NewElement("template")
	require.NotNil(t, tmpl.Content())
	assert.Len(t, tmpl.Children, 1)
	assert.Same(t, tmpl.Content(), tmpl.Content())
	assert.Nil(t, NewElement("div").Content())
}

func TestQueryAll(t *testing.T) {
	doc, err := ParseString(`<template><span>a</span><template><span>b</span></template></template>`)
	require.NoError(t, err)

	spans := QueryAll(doc, HasTagName("span"))
	require.Len(t, spans, 2)
	assert.Equal(t, "a", spans[0].TextContent())
	assert.Equal(t, "b", spans[1].TextContent())

	templates := QueryAll(doc, And(HasTagName("template")))
	assert.Len(t, templates, 2)
}
