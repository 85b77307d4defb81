package domain

import (
	"fmt"
	"strings"
	"time"
)

// Book is a catalog entry. PDFURL is the share link as entered; the viewer
// rewrites it to a direct download when loading.
type Book struct {
	Slug      string
	Title     string
	Author    string
	PDFURL    string
	Pages     int
	Language  string
	Active    bool
	UpdatedAt time.Time
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(b.PDFURL) == "" {
		return fmt.Errorf("pdf url is required")
	}
	if b.Pages < 0 {
		return fmt.Errorf("pages must be non-negative")
	}
	return nil
}
