package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF reads the text of every page of the PDF at path, in page
// order, together with the URI targets of its link annotations and any
// http(s) links found in the text.
func ExtractPDF(path string) (res *Result, err error) {
	// The pdf package panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &ParseError{Kind: "pdf", Err: fmt.Errorf("%v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ParseError{Kind: "pdf", Err: err}
	}
	defer f.Close()

	var textBuilder strings.Builder
	links := newLinkSet()
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Kind: "pdf", Err: fmt.Errorf("page %d: %w", i, err)}
		}
		textBuilder.WriteString(text)

		for _, uri := range annotationURIs(page) {
			links.add(uri)
		}
	}

	text := textBuilder.String()
	links.addText(text, LinksHTTP)

	return &Result{
		Text:  text,
		Links: links.list(),
		Pages: numPages,
	}, nil
}

// ExtractPDFBytes runs ExtractPDF on an in-memory document.
func ExtractPDFBytes(data []byte) (*Result, error) {
	return extractBytes(data, "resume-*.pdf", ExtractPDF)
}

// annotationURIs returns the /URI targets of the page's link annotations.
func annotationURIs(page pdf.Page) []string {
	annots := page.V.Key("Annots")
	var uris []string
	for i := 0; i < annots.Len(); i++ {
		action := annots.Index(i).Key("A")
		if action.IsNull() {
			continue
		}
		if uri := action.Key("URI").Text(); uri != "" {
			uris = append(uris, uri)
		}
	}
	return uris
}
