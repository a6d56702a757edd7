package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		html      string
		wantTitle string
		want      string
	}{
		{
			name: "article preferred",
			html: `<html><head><title>Doc</title></head><body>
				<nav><a href="/">Home</a></nav>
				<article><h1>Headline</h1><p>First paragraph.</p><p>Second<br>line.</p></article>
				<footer>Copyright</footer></body></html>`,
			wantTitle: "Doc",
			want:      "Headline\n\nFirst paragraph.\n\nSecond line.",
		},
		{
			name:      "og title wins",
			html:      `<html><head><meta property="og:title" content=" Social "><title>Doc</title></head><body><p>Body.</p></body></html>`,
			wantTitle: "Social",
			want:      "Body.",
		},
		{
			name: "scripts dropped",
			html: `<body><script>var x = 1;</script><style>p{}</style><p>Visible text.</p></body>`,
			want: "Visible text.",
		},
		{
			name: "plain body fallback",
			html: `<body><div>Just   a   div.</div></body>`,
			want: "Just a div.",
		},
		{
			name: "nested blocks not duplicated",
			html: `<body><ul><li><p>Inner.</p></li></ul></body>`,
			want: "Inner.",
		},
		{
			name: "loose text beside blocks",
			html: `<body><div>intro<p>x</p>outro</div></body>`,
			want: "intro\n\nx\n\noutro",
		},
		{
			name: "inline elements join their paragraph",
			html: `<body><section>The <em>harbor</em> reopened <a href="/n">today</a>.<p>Details follow.</p></section></body>`,
			want: "The harbor reopened today.\n\nDetails follow.",
		},
		{
			name: "sibling divs stay separate",
			html: `<body><div>First note.</div><div>Second note.</div><!-- hidden --></body>`,
			want: "First note.\n\nSecond note.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, err := Text(tt.html)
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if page.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", page.Title, tt.wantTitle)
			}
			if page.Text != tt.want {
				t.Errorf("text = %q, want %q", page.Text, tt.want)
			}
		})
	}
}

func TestText_NoText(t *testing.T) {
	t.Parallel()

	_, err := Text(`<html><body><script>only()</script></body></html>`)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("err = %v, want ErrNoText", err)
	}
}

func TestText_PlainStringIsBody(t *testing.T) {
	t.Parallel()

	page, err := Text("not really html")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(page.Text, "not really html") {
		t.Errorf("text = %q", page.Text)
	}
}
