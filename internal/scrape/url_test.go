package scrape

import "testing"

func TestCanonicalURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://EXAMPLE.com/soup?utm_source=x&utm_medium=y", "https://example.com/soup"},
		{"https://example.com/soup?servings=4&fbclid=abc#comments", "https://example.com/soup?servings=4"},
		{"  https://example.com/soup  ", "https://example.com/soup"},
		{"https://example.com/soup?utm_name=a&utm_reader=feed&utm_social=x&page=2", "https://example.com/soup?page=2"},
		{"not a url", "not a url"},
		{"/relative/path", "/relative/path"},
	}
	for _, tc := range cases {
		if got := CanonicalURL(tc.in); got != tc.want {
			t.Fatalf("CanonicalURL(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
