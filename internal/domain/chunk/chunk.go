// Package chunk holds extracted page text and the chunks cut from it.
package chunk

// Page is the text of one physical PDF page, 1-based.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous slice of a document's extracted text.
// Start and End are rune offsets into the joined document text.
type Chunk struct {
	DocumentID string
	Index      int
	PageNumber int // page of the first character
	EndPage    int // page of the last character
	Start      int
	End        int
	Text       string
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int { return c.End - c.Start }

// Preview returns at most n characters of the chunk text, with "..." when cut.
func Preview(text string, n int) string {
	r := []rune(text)
	if n <= 0 || len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
