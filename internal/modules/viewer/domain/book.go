package domain

// BookRef is what the viewer needs to know about the book being opened.
// Pages is the catalog's count and only a hint; the loaded document wins.
type BookRef struct {
	ID    string
	Title string
	URL   string
	Pages int
}

// Page is the extracted text of one document page.
type Page struct {
	Number int
	Text   string
}
