package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMessageID(t *testing.T) {
	tests := []struct {
		name string
		path []string
		id   string
		want string
	}{
		{name: "explicit id wins", path: []string{"template", "#document-fragment", "span"}, id: "greeting", want: "greeting"},
		{name: "plain segments", path: []string{"template", "#document-fragment", "div_1", "span"}, want: "div_1:span"},
		{name: "id segment resets", path: []string{"template", "#document-fragment", "div", "#card", "h1"}, want: "card:h1"},
		{name: "text appended to id", path: []string{"template", "#document-fragment", "#card", "#text_2"}, want: "card:text_2"},
		{name: "leading text", path: []string{"template", "#document-fragment", "#text"}, want: "text"},
		{name: "fragments skipped", path: []string{"#x-app", "#document-fragment", "template", "#document-fragment", "b"}, want: "template:b"},
		{name: "root excluded", path: []string{"#x-app", "p"}, want: "p"},
		{name: "root only", path: []string{"#x-app"}, want: "x-app"},
		{name: "root only plain", path: []string{"template", "#document-fragment"}, want: "template"},
		{name: "numeric param segment", path: []string{"template", "#document-fragment", "p", "1"}, want: "p:1"},
		{name: "empty path", path: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateMessageID(tt.path, tt.id))
		})
	}
}

func TestPathEnterPops(t *testing.T) {
	var p Path
	exitOuter := p.enter("template")
	exitInner := p.enter("span_1")
	assert.Equal(t, Path{"template", "span_1"}, p)
	exitInner()
	assert.Equal(t, Path{"template"}, p)
	exitOuter()
	assert.Empty(t, p)
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "#title", segment("h1", "title", 3))
	assert.Equal(t, "span", segment("span", "", 0))
	assert.Equal(t, "#text_2", segment("#text", "", 2))
}
