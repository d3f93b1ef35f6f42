package extract

import (
	"reflect"
	"testing"
)

func TestSections(t *testing.T) {
	page := `<html><head>
<title>Sleep Well Gummies</title>
<script>var x = "not content";</script>
<style>.hidden { display: none }</style>
</head><body>
<h1>Sleep Well Gummies - Fall Asleep Fast</h1>
<ul>
  <li>Clinically proven to improve sleep quality</li>
  <li><b>100%</b> natural ingredients</li>
  <li>   </li>
</ul>
<p>Wake up refreshed every morning.</p>
<noscript>enable javascript</noscript>
<iframe src="ads.html"></iframe>
</body></html>`

	sections, err := Sections(page)
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}

	want := []Section{
		{Kind: "title", Text: "Sleep Well Gummies"},
		{Kind: "title", Text: "Sleep Well Gummies - Fall Asleep Fast"},
		{Kind: "bullet", Text: "Clinically proven to improve sleep quality"},
		{Kind: "bullet", Text: "100% natural ingredients"},
		{Kind: "paragraph", Text: "Wake up refreshed every morning."},
	}
	if !reflect.DeepEqual(sections, want) {
		t.Errorf("sections:\n got %+v\nwant %+v", sections, want)
	}
}

func TestSections_EmptyPage(t *testing.T) {
	sections, err := Sections("")
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("expected no sections, got %+v", sections)
	}
}
