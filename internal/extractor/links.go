package extractor

import "regexp"

// LinkMode selects which link patterns ExtractLinks applies.
type LinkMode int

const (
	// LinksHTTP matches http:// and https:// links only.
	LinksHTTP LinkMode = iota
	// LinksWithWWW additionally matches bare www. links.
	LinksWithWWW
)

var (
	httpLinkPattern = regexp.MustCompile(`https?://[^\s,;]+`)
	wwwLinkPattern  = regexp.MustCompile(`www\.[^\s,;]+`)
)

// ExtractLinks returns the distinct link-like substrings of text. A match
// runs until the next whitespace, comma or semicolon and is not validated.
func ExtractLinks(text string, mode LinkMode) []string {
	set := newLinkSet()
	set.addText(text, mode)
	return set.list()
}

// linkSet collects links from several sources without duplicates.
type linkSet struct {
	seen  map[string]struct{}
	order []string
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

func (s *linkSet) add(link string) {
	if link == "" {
		return
	}
	if _, ok := s.seen[link]; ok {
		return
	}
	s.seen[link] = struct{}{}
	s.order = append(s.order, link)
}

func (s *linkSet) addText(text string, mode LinkMode) {
	for _, m := range httpLinkPattern.FindAllString(text, -1) {
		s.add(m)
	}
	if mode == LinksWithWWW {
		for _, m := range wwwLinkPattern.FindAllString(text, -1) {
			s.add(m)
		}
	}
}

// list never returns nil so an empty set encodes as [].
func (s *linkSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
