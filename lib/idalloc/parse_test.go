package idalloc

import "testing"

func TestParseIdentifier(t *testing.T) {
	valid := []struct {
		id     string
		prefix string
		n      uint64
	}{
		{"JD-1", "JD", 1},
		{"JD-42", "JD", 42},
		{"A-B-7", "A-B", 7},
		{"-3", "", 3},
		{"JD-007", "JD", 7},
	}
	for _, c := range valid {
		prefix, n, ok := ParseIdentifier(c.id)
		if !ok {
			t.Errorf("ParseIdentifier(%q) should succeed", c.id)
			continue
		}
		if prefix != c.prefix || n != c.n {
			t.Errorf("ParseIdentifier(%q) = (%q, %d), expected (%q, %d)", c.id, prefix, n, c.prefix, c.n)
		}
	}

	invalid := []string{"", "JD", "JD-", "JD-0", "JD-abc", "JD-1a", "JD-+1", "JD- 1", "JD--1x", "JD-99999999999999999999999"}
	for _, id := range invalid {
		if _, _, ok := ParseIdentifier(id); ok {
			t.Errorf("ParseIdentifier(%q) should fail", id)
		}
	}
}

func TestFormatIdentifier(t *testing.T) {
	if got := FormatIdentifier("JD", 12); got != "JD-12" {
		t.Errorf("Expected JD-12, got %s", got)
	}
	prefix, n, ok := ParseIdentifier(FormatIdentifier("A-B", 3))
	if !ok || prefix != "A-B" || n != 3 {
		t.Errorf("Format/Parse mismatch: (%q, %d, %v)", prefix, n, ok)
	}
}

func TestInitialsFromName(t *testing.T) {
	cases := map[string]string{
		"":                  "XX",
		"   ":               "XX",
		"Jane Doe":          "JD",
		"jane":              "JA",
		"j":                 "J",
		"Mary Ann Smith":    "MS",
		"acme":              "AC",
		"  padded   name  ": "PN",
		"émile zola":        "ÉZ",
	}
	for name, expected := range cases {
		if got := InitialsFromName(name); got != expected {
			t.Errorf("InitialsFromName(%q) = %q, expected %q", name, got, expected)
		}
	}
}
