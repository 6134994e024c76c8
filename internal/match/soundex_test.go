package match

import "testing"

func TestSoundex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robert", "R163"},
		{"Rupert", "R163"},
		{"Jackson", "J250"},
		{"Tymczak", "T522"},
		{"Pfister", "P236"},
		{"Smith", "S530"},
		{"Smyth", "S530"},
		{"smith", "S530"},
		{"Lee", "L000"},
		{"", "0000"},
		{"12345", "0000"},
		{"   ", "0000"},
	}

	for _, tt := range tests {
		got := Soundex(tt.in)
		if got != tt.want {
			t.Errorf("Soundex(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) != 4 {
			t.Errorf("Soundex(%q) length = %d, want 4", tt.in, len(got))
		}
	}
}

func TestSoundexVowelSeparation(t *testing.T) {
	// A repeated code separated by a vowel is emitted again.
	if got := Soundex("Bobby"); got != "B100" {
		t.Errorf("Soundex(Bobby) = %q, want B100", got)
	}
	// Adjacent letters with the same code collapse.
	if got := Soundex("Pfeiffer"); got[0] != 'P' {
		t.Errorf("Soundex(Pfeiffer) = %q, want leading P", got)
	}
}
