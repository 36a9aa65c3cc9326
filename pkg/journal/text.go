package journal

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup from entry content, keeping text nodes separated by
// single spaces. Script and style bodies are dropped.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawText(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}

// Words returns the distinct words of the entry's plain text content, in
// order of first appearance. Surrounding punctuation is trimmed.
func (c ContentItem) Words() []string {
	seen := make(map[string]struct{})
	var words []string
	for _, f := range strings.Fields(PlainText(c.Content)) {
		w := strings.TrimFunc(f, isPunct)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, w)
	}
	return words
}

func isPunct(r rune) bool {
	return strings.ContainsRune(`.,;:!?"'()[]{}«»“”‘’…`, r)
}
