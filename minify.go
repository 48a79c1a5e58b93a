package i18nprep

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

// getMinifier returns the document minifier (singleton). It keeps quotes
// and end tags so bindings and template structure survive.
func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags:    true,
			KeepEndTags:         true,
			KeepQuotes:          true,
			KeepDefaultAttrVals: true,
		})
	})
	return minifier
}

// minifyDocument minifies an emitted document, returning it unchanged on failure.
func minifyDocument(doc []byte) ([]byte, error) {
	out, err := getMinifier().Bytes("text/html", doc)
	if err != nil {
		return doc, err
	}
	return out, nil
}
