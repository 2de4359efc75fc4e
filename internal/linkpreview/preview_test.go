package linkpreview

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to build document: %v", err)
	}
	return doc
}

func TestParseOpenGraphTags(t *testing.T) {
	html := `<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="Save the Rainforest" />
		<meta property="og:description" content="A campaign video" />
		<meta property="og:image" content="https://cdn.example.com/thumb.jpg" />
		<meta property="og:site_name" content="VideoHub" />
	</head><body></body></html>`

	p := parse(docFromString(t, html))

	if p.Title != "Save the Rainforest" {
		t.Errorf("title = %q, want %q", p.Title, "Save the Rainforest")
	}
	if p.Description != "A campaign video" {
		t.Errorf("description = %q, want %q", p.Description, "A campaign video")
	}
	if p.ImageURL != "https://cdn.example.com/thumb.jpg" {
		t.Errorf("image = %q", p.ImageURL)
	}
	if p.SiteName != "VideoHub" {
		t.Errorf("site_name = %q", p.SiteName)
	}
}

func TestParseFallsBackToTitleTag(t *testing.T) {
	html := `<html><head><title>  Plain Page  </title></head><body></body></html>`

	p := parse(docFromString(t, html))

	if p.Title != "Plain Page" {
		t.Errorf("title = %q, want %q", p.Title, "Plain Page")
	}
	if p.ImageURL != "" {
		t.Errorf("image should be empty, got %q", p.ImageURL)
	}
}

func TestParseIgnoresEmptyContent(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="   " />
		<meta property="og:image" content="https://cdn.example.com/a.jpg" />
		<meta name="description" content="meta name fallback" />
	</head></html>`

	p := parse(docFromString(t, html))

	if p.ImageURL != "https://cdn.example.com/a.jpg" {
		t.Errorf("image = %q", p.ImageURL)
	}
	if p.Description != "meta name fallback" {
		t.Errorf("description = %q", p.Description)
	}
}

func TestParseFirstImageWins(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="https://cdn.example.com/first.jpg" />
		<meta property="og:image" content="https://cdn.example.com/second.jpg" />
	</head></html>`

	p := parse(docFromString(t, html))

	if p.ImageURL != "https://cdn.example.com/first.jpg" {
		t.Errorf("image = %q, want first og:image", p.ImageURL)
	}
}
