package utils

import "testing"

func TestNormalizeNameForMatch(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"John (Temp)", "john"},
		{"  JOHN   Smith ", "john smith"},
		{"068 641 1128", "068 641 1128"},
		{"068  641\t1128 (lead)", "068 641 1128"},
		{"(x)(y)", ""},
		{"", ""},
	}
	for _, tc := range cases {
		got := NormalizeNameForMatch(tc.in)
		if got != tc.expected {
			t.Fatalf("NormalizeNameForMatch(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
		if again := NormalizeNameForMatch(got); again != got {
			t.Fatalf("NormalizeNameForMatch not idempotent for %q: %q then %q", tc.in, got, again)
		}
	}
	if NormalizeNameForMatch("John (Temp)") != NormalizeNameForMatch("john") {
		t.Fatalf("expected \"John (Temp)\" to match \"john\"")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-09-03")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if d == nil || d.Format(DateLayout) != "2025-09-03" {
		t.Fatalf("expected 2025-09-03, got %v", d)
	}

	d, err = ParseDate("  ")
	if err != nil || d != nil {
		t.Fatalf("expected (nil, nil) for blank input, got (%v, %v)", d, err)
	}

	for _, bad := range []string{"2025/09/03", "03-09-2025", "2025-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) expected error", bad)
		}
		if ParseDateLenient(bad) != nil {
			t.Fatalf("ParseDateLenient(%q) expected nil", bad)
		}
	}
}

func TestExecTemplate(t *testing.T) {
	out, err := ExecTemplate("SELECT {{.col}} FROM t{{if .where}} WHERE x = 1{{end}}", map[string]interface{}{
		"col":   "a",
		"where": true,
	})
	if err != nil {
		t.Fatalf("ExecTemplate error: %v", err)
	}
	if out != "SELECT a FROM t WHERE x = 1" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := ExecTemplate("{{.col", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("068 641 1128", "ZA"); err != nil {
		t.Fatalf("expected valid ZA number, got %v", err)
	}
	if err := ValidatePhoneNumber("123", "ZA"); err == nil {
		t.Fatalf("expected error for short number")
	}
}
