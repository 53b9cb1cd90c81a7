package cnx

import "fmt"

// Abstract is the free-text summary of a collection.
// ID stays nil until the abstract is persisted.
type Abstract struct {
	ID   *int64
	Text string
}

// NewAbstract creates an unsaved abstract with the given text.
func NewAbstract(text string) *Abstract {
	return &Abstract{Text: text}
}

// String returns the abstract text.
func (a *Abstract) String() string {
	if a == nil {
		return ""
	}
	return a.Text
}

// Equal reports whether two abstracts carry the same text.
// Persistence identity is not compared.
func (a *Abstract) Equal(other *Abstract) bool {
	return a.String() == other.String()
}

// GoString renders a short debugging form, e.g. <Abstract - [7] 'An introdu...'>.
func (a *Abstract) GoString() string {
	if a == nil {
		return "<Abstract nil>"
	}
	id := "unsaved"
	if a.ID != nil {
		id = fmt.Sprint(*a.ID)
	}
	preview := []rune(a.Text)
	if len(preview) > 10 {
		preview = preview[:10]
	}
	return fmt.Sprintf("<Abstract - [%s] '%s...'>", id, string(preview))
}
