package reference

import "testing"

func TestIsValid(t *testing.T) {
	valid := []string{
		"John 3:16",
		"John 3",
		"Psalm 23",
		"Genesis 1:1-31",
		"Song of Solomon 2:1-17",
		"1 John 3",
		"2 Timothy 2:1-13",
		"Micah 6:6-8",
		"Psalm 119:1-24",
		"Matthew 5:1 - 16",
	}
	for _, ref := range valid {
		if !IsValid(ref) {
			t.Errorf("expected %q to be valid", ref)
		}
	}

	invalid := []string{
		"",
		"   ",
		"John",
		"3:16",
		"John chapter three",
		"4 Maccabees 1:1",
		"John 3:16; Luke 2",
		"John 3:16-",
	}
	for _, ref := range invalid {
		if IsValid(ref) {
			t.Errorf("expected %q to be invalid", ref)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  john   3:16 ":        "john 3:16",
		"Genesis 1:1–31":        "Genesis 1:1-31",
		"Song  of  Solomon 2:1": "Song of Solomon 2:1",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidAcceptsUntrimmedInput(t *testing.T) {
	if !IsValid("  Luke   15:11-32  ") {
		t.Error("expected whitespace-noisy reference to validate after normalization")
	}
}
