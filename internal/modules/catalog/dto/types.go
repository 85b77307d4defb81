package dto

type AddBookInput struct {
	Slug     string
	Title    string
	Author   string
	PDFURL   string
	Pages    int
	Language string
}

type ListBooksInput struct {
	IncludeInactive bool
}

type SetActiveInput struct {
	Slug   string
	Active bool
}

type BookOutput struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	PDFURL   string `json:"pdf_url"`
	Pages    int    `json:"pages"`
	Language string `json:"language,omitempty"`
	Active   bool   `json:"active"`
}
