package ports

// Converter renders markdown and extracts best-effort titles. Implementations
// are stateless and safe for concurrent use.
type Converter interface {
	ToHTML(src []byte) (string, error)
	// MarkdownTitle returns the first level-1 heading, or "" when there is none.
	MarkdownTitle(src []byte) string
	// HTMLTitle returns the first <title> element's text, or "".
	HTMLTitle(src []byte) string
}
