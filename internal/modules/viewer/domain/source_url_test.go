package domain

import "testing"

func TestResolveSourceURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drive share link",
			in:   "https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=1AbC_d-9",
		},
		{
			name: "drive without id",
			in:   "https://drive.google.com/drive/folders",
			want: "https://drive.google.com/drive/folders",
		},
		{
			name: "dropbox dl=0",
			in:   "https://www.dropbox.com/s/abc/gita.pdf?dl=0",
			want: "https://www.dropbox.com/s/abc/gita.pdf?dl=1",
		},
		{
			name: "dropbox already direct",
			in:   "https://www.dropbox.com/s/abc/gita.pdf?dl=1",
			want: "https://www.dropbox.com/s/abc/gita.pdf?dl=1",
		},
		{
			name: "dropbox without dl",
			in:   "https://www.dropbox.com/s/abc/gita.pdf",
			want: "https://www.dropbox.com/s/abc/gita.pdf?dl=1",
		},
		{
			name: "dropbox other params",
			in:   "https://www.dropbox.com/scl/fi/x/y.pdf?rlkey=k",
			want: "https://www.dropbox.com/scl/fi/x/y.pdf?rlkey=k&dl=1",
		},
		{
			name: "plain url trimmed",
			in:   "  https://example.org/books/upanishad.pdf ",
			want: "https://example.org/books/upanishad.pdf",
		},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		if got := ResolveSourceURL(tt.in); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}
