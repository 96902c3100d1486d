package browser

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  https://example.com/a  ", "https://example.com/a"},
		{"http://example.com", "http://example.com"},
		{"184567", "https://petition.president.gov.ua/petition/184567"},
		{"petition.president.gov.ua", "https://petition.president.gov.ua"},
		{"тарифи на газ", "https://html.duckduckgo.com/html/?q=site%3Apetition.president.gov.ua+%D1%82%D0%B0%D1%80%D0%B8%D1%84%D0%B8+%D0%BD%D0%B0+%D0%B3%D0%B0%D0%B7"},
		{"12 34", "https://html.duckduckgo.com/html/?q=site%3Apetition.president.gov.ua+12+34"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"TEXT/HTML", true},
		{"application/json", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsHTML(tt.ct); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}
