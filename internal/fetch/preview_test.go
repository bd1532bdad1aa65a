package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPreview(t *testing.T) {
	tests := []struct {
		name string
		html string
		base string
		want Preview
	}{
		{
			name: "open graph tags win",
			html: `<html><head>
				<title>Fallback Title</title>
				<meta name="description" content="Fallback description">
				<meta property="og:title" content="OG Title">
				<meta property="og:description" content="OG description">
				<meta property="og:image" content="/img/card.png">
				<meta property="og:site_name" content="Natours">
			</head><body></body></html>`,
			base: "https://natours.example.com/tours/",
			want: Preview{
				URL:         "https://natours.example.com/tours/",
				Title:       "OG Title",
				Description: "OG description",
				Image:       "https://natours.example.com/img/card.png",
				SiteName:    "Natours",
			},
		},
		{
			name: "twitter tags when no open graph",
			html: `<html><head>
				<meta name="twitter:title" content="Tweet Title">
				<meta name="twitter:description" content="Tweet description">
				<meta name="twitter:image" content="https://cdn.example.com/t.jpg">
			</head></html>`,
			base: "https://www.example.com",
			want: Preview{
				URL:         "https://www.example.com",
				Title:       "Tweet Title",
				Description: "Tweet description",
				Image:       "https://cdn.example.com/t.jpg",
				SiteName:    "example.com",
			},
		},
		{
			name: "title and meta description",
			html: `<html><head>
				<title>  Plain Title  </title>
				<meta name="description" content="Plain description">
			</head></html>`,
			base: "https://plain.example.org/",
			want: Preview{
				URL:         "https://plain.example.org/",
				Title:       "Plain Title",
				Description: "Plain description",
				SiteName:    "plain.example.org",
			},
		},
		{
			name: "description from page text",
			html: `<html><head><title>Bare</title></head>
				<body><nav>Menu</nav><main>
					<p>First paragraph.</p>
					<p>Second.</p>
				</main></body></html>`,
			base: "https://bare.example.net",
			want: Preview{
				URL:         "https://bare.example.net",
				Title:       "Bare",
				Description: "First paragraph.",
				SiteName:    "bare.example.net",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPreview(tt.html, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", 20)
	got := truncate(long, 5)
	assert.Equal(t, strings.Repeat("é", 5)+"…", got)
}
