package lastvisit

import "testing"

func TestIsNumericString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123", true},
		{"0", true},
		{"12.5", true},
		{"-3", true},
		{"+7", true},
		{".5", true},
		{"5.", true},
		{"1e3", true},
		{"1E-3", true},
		{"Infinity", true},
		{"-Infinity", true},
		{"0x1F", true},
		{"0b101", true},
		{"0o17", true},
		{" 42 ", true},
		{"\t42\n", true},
		{"\u00a042\u3000", true},
		{"\ufeff42\u2028", true},
		{"\u008542", false},
		{"42\u0085", false},
		{"", false},
		{"   ", false},
		{"abc", false},
		{"12a", false},
		{"a12", false},
		{"1 2", false},
		{".", false},
		{"-", false},
		{"1e", false},
		{"NaN", false},
		{"infinity", false},
		{"-0x1F", false},
		{"0x", false},
		{"1_000", false},
		{"12,5", false},
	}

	for _, tt := range tests {
		if got := IsNumericString(tt.in); got != tt.want {
			t.Errorf("IsNumericString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRedirectURL(t *testing.T) {
	got := RedirectURL("42")
	want := "https://petition.president.gov.ua/petition/42?lvp=true"
	if got != want {
		t.Errorf("RedirectURL(42) = %q, want %q", got, want)
	}
}

func TestPetitionID(t *testing.T) {
	tests := []struct {
		path   string
		wantID string
		wantOK bool
	}{
		{"/petition/777", "777", true},
		{"/petition/777/comments", "777", true},
		{"/a/b", "b", false},
		{"/petition", "", false},
		{"/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		id, ok := PetitionID(tt.path)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("PetitionID(%q) = (%q, %v), want (%q, %v)", tt.path, id, ok, tt.wantID, tt.wantOK)
		}
	}
}
