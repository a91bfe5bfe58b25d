package head

import (
	"strings"
	"testing"
)

func TestMedia_DeduplicatesInOrder(t *testing.T) {
	b := New()
	b.Media(
		[]string{"/s/theme/a.css", "/s/lib/codemirror.css"},
		[]string{"/s/lib/codemirror.js", "/s/mode/xml/xml.js"},
	)
	b.Media(
		[]string{"/s/lib/codemirror.css", "/s/lib/util/dialog.css"},
		[]string{"/s/lib/codemirror.js", "/s/mode/css/css.js"},
	)

	links := strings.Split(string(b.Links()), "\n")
	wantLinks := []string{"/s/theme/a.css", "/s/lib/codemirror.css", "/s/lib/util/dialog.css"}
	if len(links) != len(wantLinks) {
		t.Fatalf("links = %q", links)
	}
	for i, href := range wantLinks {
		if !strings.Contains(links[i], `href="`+href+`"`) {
			t.Errorf("link %d = %q, want href %s", i, links[i], href)
		}
	}

	scripts := strings.Split(string(b.Scripts()), "\n")
	wantScripts := []string{"/s/lib/codemirror.js", "/s/mode/xml/xml.js", "/s/mode/css/css.js"}
	if len(scripts) != len(wantScripts) {
		t.Fatalf("scripts = %q", scripts)
	}
	for i, src := range wantScripts {
		if !strings.Contains(scripts[i], `src="`+src+`"`) {
			t.Errorf("script %d = %q, want src %s", i, scripts[i], src)
		}
	}
}

func TestTitle_Escaped(t *testing.T) {
	b := New()
	if b.Title() != "" {
		t.Fatalf("empty builder should have no title")
	}
	b.SetTitle("a < b")
	if got := string(b.Title()); got != "<title>a &lt; b</title>" {
		t.Errorf("Title = %q", got)
	}
}
