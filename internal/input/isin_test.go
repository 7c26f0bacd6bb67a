package input

import "testing"

func TestFormatValid(t *testing.T) {
	tests := []struct {
		isin string
		want bool
	}{
		{"RU000A105EX7", true},
		{"US0378331005", true},
		{" ru000a105ex7 ", true}, // normalized before matching
		{"RU000A105EX", false},   // too short
		{"RU000A105EX77", false}, // too long
		{"1U000A105EX7", false},  // country code must be letters
		{"RU000A105EXX", false},  // check digit must be numeric
		{"", false},
	}
	for _, tt := range tests {
		if got := FormatValid(tt.isin); got != tt.want {
			t.Errorf("FormatValid(%q) = %v, want %v", tt.isin, got, tt.want)
		}
	}
}

func TestChecksumValid(t *testing.T) {
	valid := []string{
		"US0378331005",
		"GB0002634946",
		"RU000A105EX7",
		"RU000A0JXPG2",
		"DE0001102580",
		"XS2010044381",
		"RU000A101S81",
	}
	for _, isin := range valid {
		if !ChecksumValid(isin) {
			t.Errorf("ChecksumValid(%q) = false, want true", isin)
		}
	}

	invalid := []string{
		"US0378331006", // check digit off by one
		"RU000A0ZZZY1",
		"RU000A105EX8",
	}
	for _, isin := range invalid {
		if ChecksumValid(isin) {
			t.Errorf("ChecksumValid(%q) = true, want false", isin)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("ru000a105ex7") {
		t.Error("lower-case valid ISIN rejected")
	}
	if Valid("SU26238RMFS") {
		t.Error("non-ISIN exchange code accepted")
	}
}
