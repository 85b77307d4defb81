package domain

import "testing"

func TestBookValidate(t *testing.T) {
	t.Parallel()
	valid := Book{Slug: "bhagavad-gita", Title: "Bhagavad Gita", PDFURL: "https://example.org/gita.pdf", Pages: 700}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid book: %v", err)
	}

	broken := []Book{
		{Title: "x", PDFURL: "u"},
		{Slug: "x", PDFURL: "u"},
		{Slug: "x", Title: "x"},
		{Slug: "x", Title: "x", PDFURL: "u", Pages: -1},
	}
	for i, b := range broken {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, b)
		}
	}
}
