package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, []FileRow{
		{Path: "app/x-app.html", Components: 1, Messages: 12, Warnings: 1},
		{Path: "app/plain.html", Skipped: true},
	}, 3)

	out := buf.String()
	for _, want := range []string{"FILE", "app/x-app.html", "12", "not localizable", "2 files, 12 messages, 1 warnings, 1 skipped, 3 outputs written"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCatalogDiff(t *testing.T) {
	var buf bytes.Buffer
	CatalogDiff(&buf, 4, 3, []Change{
		{Kind: "added", Component: "x-app", Key: "p_2", New: `"Body"`},
		{Kind: "removed", Component: "x-app", Key: "p_1", Old: `"Body"`},
		{Kind: "changed", Component: "x-app", Key: "title", Old: `"A"`, New: `"B"`},
	})

	out := buf.String()
	for _, want := range []string{"run 4 vs 3", `+ x-app p_2 = "Body"`, `- x-app p_1 = "Body"`, `~ x-app title: "A" -> "B"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected diff to contain %q, got:\n%s", want, out)
		}
	}

	buf.Reset()
	CatalogDiff(&buf, 1, 0, nil)
	if !strings.Contains(buf.String(), "no previous run") || !strings.Contains(buf.String(), "no message keys changed") {
		t.Errorf("Unexpected output for first run: %s", buf.String())
	}
}

func TestVerifyAndError(t *testing.T) {
	var buf bytes.Buffer
	Verify(&buf, "x-app.html", 5, nil, nil)
	if !strings.Contains(buf.String(), "x-app.html: 5 references resolved") {
		t.Errorf("Unexpected output: %s", buf.String())
	}

	buf.Reset()
	Verify(&buf, "x-app.html", 5, []string{"x-app: text.p at <p>"}, []string{"x-b"})
	if !strings.Contains(buf.String(), "unresolved x-app: text.p at <p>") || !strings.Contains(buf.String(), "missing bundle x-b") {
		t.Errorf("Unexpected output: %s", buf.String())
	}

	buf.Reset()
	Error(&buf, errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Unexpected output: %s", buf.String())
	}
}
