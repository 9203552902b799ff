package extractor

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// ExtractDOCX converts the DOCX at path to plain text and recovers the
// http(s) and www. links written in it.
func ExtractDOCX(path string) (*Result, error) {
	zipReader, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ParseError{Kind: "docx", Err: err}
	}
	defer zipReader.Close()

	text, err := docxText(&zipReader.Reader)
	if err != nil {
		return nil, &ParseError{Kind: "docx", Err: err}
	}

	return &Result{
		Text:  text,
		Links: ExtractLinks(text, LinksWithWWW),
	}, nil
}

// ExtractDOCXBytes runs ExtractDOCX on an in-memory document.
func ExtractDOCXBytes(data []byte) (*Result, error) {
	return extractBytes(data, "resume-*.docx", ExtractDOCX)
}

// docxText flattens headers, body and footers, in that order.
func docxText(zr *zip.Reader) (string, error) {
	var body *zip.File
	var headers, footers []*zip.File

	for _, file := range zr.File {
		name := file.Name
		switch {
		case name == "word/document.xml":
			body = file
		case path.Dir(name) == "word" && isPart(name, "header"):
			headers = append(headers, file)
		case path.Dir(name) == "word" && isPart(name, "footer"):
			footers = append(footers, file)
		}
	}

	if body == nil {
		return "", errors.New("word/document.xml not found")
	}

	byName := func(files []*zip.File) {
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	}
	byName(headers)
	byName(footers)

	parts := append(append(headers, body), footers...)

	var textBuilder strings.Builder
	for _, part := range parts {
		if err := writePartText(&textBuilder, part); err != nil {
			return "", fmt.Errorf("%s: %w", part.Name, err)
		}
	}

	return strings.TrimSpace(textBuilder.String()), nil
}

func isPart(name, prefix string) bool {
	base := path.Base(name)
	return strings.HasPrefix(base, prefix) && strings.HasSuffix(base, ".xml")
}

// writePartText appends the text of one WordprocessingML part. Runs of
// text are copied verbatim, tabs and breaks become \t and \n, and every
// paragraph is preceded by a blank line.
func writePartText(w *strings.Builder, file *zip.File) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	inText := 0
	inTabStops := 0

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText++
			case "tabs":
				inTabStops++
			case "tab":
				if inTabStops == 0 {
					w.WriteByte('\t')
				}
			case "br", "cr":
				w.WriteByte('\n')
			case "p":
				w.WriteString("\n\n")
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText--
			case "tabs":
				inTabStops--
			}
		case xml.CharData:
			if inText > 0 {
				w.Write(t)
			}
		}
	}
}
