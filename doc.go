// Package i18nprep extracts user-facing text from component templates into
// per-component message bundles.
//
// A Preprocessor takes a File, finds the templates of documents that import
// the i18n behavior, assigns every text node and localizable attribute a
// stable message id and collects the values into a bundle. With
// RewriteBindings the template is rewritten so each extracted value becomes
// a binding into that bundle:
//
//	p, err := i18nprep.New(i18nprep.WithRewriteBindings(true))
//	res, err := p.Process(&i18nprep.File{Path: "x-app.html", Contents: src})
//	// res.Files: x-app.html, x-app.json
package i18nprep
