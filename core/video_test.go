package core

import "testing"

func TestExtractVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{name: "watch URL", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: id},
		{name: "watch URL with extra params", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", want: id},
		{name: "watch URL with list param first", url: "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", want: id},
		{name: "short URL", url: "https://youtu.be/dQw4w9WgXcQ", want: id},
		{name: "short URL with query", url: "https://youtu.be/dQw4w9WgXcQ?si=abc", want: id},
		{name: "embed URL", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: id},
		{name: "legacy v URL", url: "https://www.youtube.com/v/dQw4w9WgXcQ", want: id},
		{name: "legacy user URL", url: "http://www.youtube.com/user/someone#p/u/1/dQw4w9WgXcQ", want: id},
		{name: "mobile watch URL", url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: id},
		{name: "untrimmed input", url: "  https://youtu.be/dQw4w9WgXcQ  ", want: id},
		{name: "stray v param before the real one", url: "https://www.youtube.com/watch?v=abc&v=dQw4w9WgXcQ", want: id},
		{name: "stray v param after the real one", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&v=abc", wantErr: ErrNoVideoID},
		{name: "empty", url: "", wantErr: ErrNoVideoID},
		{name: "not a URL", url: "lmaooolol", wantErr: ErrNoVideoID},
		{name: "ID too short", url: "https://www.youtube.com/watch?v=abc", wantErr: ErrNoVideoID},
		{name: "ID too long", url: "https://youtu.be/dQw4w9WgXcQtoolong", wantErr: ErrNoVideoID},
		{name: "no ID position", url: "https://www.youtube.com/feed/trending", wantErr: ErrNoVideoID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != tt.wantErr {
				t.Fatalf("ExtractVideoID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractVideoID_sameVideoAllShapes(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/watch?v=jNQXAC9IVRw",
		"https://youtu.be/jNQXAC9IVRw",
		"https://www.youtube.com/embed/jNQXAC9IVRw",
		"https://www.youtube.com/v/jNQXAC9IVRw",
		"http://www.youtube.com/user/jawed#p/u/1/jNQXAC9IVRw",
	}
	for _, u := range urls {
		got, err := ExtractVideoID(u)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q) error = %v", u, err)
		}
		if got != "jNQXAC9IVRw" {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", u, got, "jNQXAC9IVRw")
		}
	}
}
