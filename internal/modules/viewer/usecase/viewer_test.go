package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"granth/internal/modules/viewer/domain"
	"granth/internal/modules/viewer/dto"
	viewerout "granth/internal/modules/viewer/port/out"
	"granth/internal/modules/viewer/service"
	"granth/internal/modules/viewer/usecase"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/logging"
)

type oneBook struct{}

func (oneBook) Resolve(_ context.Context, slug string) (domain.BookRef, error) {
	if slug != "gita" {
		return domain.BookRef{}, apperrors.ErrNotFound
	}
	return domain.BookRef{ID: "gita", Title: "Bhagavad Gita", URL: "https://www.dropbox.com/s/x/gita.pdf"}, nil
}

type staticDoc struct{}

func (staticDoc) PageCount() int               { return 3 }
func (staticDoc) PageText(int) (string, error) { return "dharma-kshetre kuru-kshetre", nil }

type staticLoader struct{}

func (staticLoader) Load(context.Context, string, func(int)) (viewerout.Document, error) {
	return staticDoc{}, nil
}

func newInteractor() *usecase.Interactor {
	svc := service.NewViewerService(service.Config{LoadTimeout: time.Second}, oneBook{}, staticLoader{}, nil, logging.Discard())
	return usecase.NewInteractor(svc).(*usecase.Interactor)
}

func TestResolveReturnsDirectLink(t *testing.T) {
	t.Parallel()
	out, err := newInteractor().Resolve(context.Background(), dto.OpenInput{BookSlug: "gita"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := dto.ResolveOutput{
		BookID:    "gita",
		Title:     "Bhagavad Gita",
		SourceURL: "https://www.dropbox.com/s/x/gita.pdf",
		URL:       "https://www.dropbox.com/s/x/gita.pdf?dl=1",
	}
	if out != want {
		t.Fatalf("resolve = %+v, want %+v", out, want)
	}
}

func TestOpenAndReadPage(t *testing.T) {
	t.Parallel()
	uc := newInteractor()
	ctx := context.Background()

	reader, err := uc.Open(ctx, dto.OpenInput{BookSlug: "gita", Page: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()
	if st := reader.State(); st.Phase != dto.PhaseLoading || st.Page != 2 {
		t.Fatalf("fresh reader state %+v", st)
	}
	st := reader.FinishLoad(reader.Load(ctx, nil))
	if st.Phase != dto.PhaseReady || st.PageCount != 3 {
		t.Fatalf("loaded state %+v", st)
	}

	page, err := uc.ReadPage(ctx, dto.ReadPageInput{BookSlug: "gita", Page: 1})
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if page.PageCount != 3 || page.Title != "Bhagavad Gita" || page.Text == "" {
		t.Fatalf("page = %+v", page)
	}

	if _, err := uc.Open(ctx, dto.OpenInput{BookSlug: "missing"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing book: %v", err)
	}
}
