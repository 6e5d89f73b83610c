package core

import "testing"

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		token     string
		wantToken string
		wantOK    bool
	}{
		{"YYYY-MM-DD", "YYYY-MM-DD", true},
		{"  YYYY-MM-DD ", "YYYY-MM-DD", true},
		{"yyyy-mm-dd", "YYYY-MM-DD", true},
		{"hh:mm", "hh:mm", true},
		{"YYYY", "YYYY", true},
		{"", "", false},
		{"QQ-YYYY", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			f, ok := c.Lookup(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			}
			if f.Token != tt.wantToken {
				t.Errorf("Lookup(%q) = %q, want %q", tt.token, f.Token, tt.wantToken)
			}
		})
	}
}

func TestCatalog_MatchFormat(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		value  string
		want   string
		wantOK bool
	}{
		{"2021-03-04", "YYYY-MM-DD", true},
		{"2021-03-04T10:11:12", "YYYY-MM-DDThh:mm:ss", true},
		{"2021-03-04 10:11", "YYYY-MM-DD hh:mm", true},
		{"12/31/2020", "MM/DD/YYYY", true},
		{"25/12/2020", "DD/MM/YYYY", true},
		{"3/7/2020", "M/D/YYYY", true},
		{"1998", "YYYY", true},
		{"12:30", "hh:mm", true},
		{"2021-03", "YYYY-MM", true},
		{"hello", "", false},
		{"2021-13-45", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f, ok := c.MatchFormat(tt.value)
			if ok != tt.wantOK || f.Token != tt.want {
				t.Errorf("MatchFormat(%q) = %q, %v; want %q, %v", tt.value, f.Token, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCatalog_PatternsAgreeWithLayouts(t *testing.T) {
	c := NewCatalog()
	samples := map[string]string{
		"YYYY-MM-DDThh:mm:ss": "2020-01-02T03:04:05",
		"YYYY-MM-DD hh:mm:ss": "2020-01-02 03:04:05",
		"YYYY-MM-DD":          "2020-01-02",
		"YYYY/MM/DD":          "2020/01/02",
		"MM/DD/YYYY":          "01/02/2020",
		"DD.MM.YYYY":          "02.01.2020",
		"DD-MMM-YYYY":         "02-Jan-2020",
		"hh:mm:ss":            "03:04:05",
		"YYYY":                "2020",
	}
	for token, v := range samples {
		f, ok := c.Lookup(token)
		if !ok {
			t.Fatalf("Lookup(%q) failed", token)
		}
		if !f.Parses(v) {
			t.Errorf("%s: layout does not parse %q", token, v)
		}
		if !f.Pattern.MatchString(v) {
			t.Errorf("%s: pattern does not match %q", token, v)
		}
	}
}

func TestCatalog_IsNA(t *testing.T) {
	c := NewCatalog()
	for _, v := range []string{"", "NA", "N/A", "NaN", "null", "NULL", "None", "#N/A"} {
		if !c.IsNA(v) {
			t.Errorf("IsNA(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"na ", "0", "missing", "-9999"} {
		if c.IsNA(v) {
			t.Errorf("IsNA(%q) = true, want false", v)
		}
	}
}

func TestCatalog_IsSentinel(t *testing.T) {
	prefix := NewCatalog()
	exact := NewCatalog(WithSentinelRule(SentinelExact))

	tests := []struct {
		value      string
		wantPrefix bool
		wantExact  bool
	}{
		{"9999", true, true},
		{"-9999", true, true},
		{"99999", true, true},
		{"9999.0", true, true},
		{"-9999.00", true, true},
		{"99990", true, false},
		{"9999.5", true, false},
		{"999", false, false},
		{"1999", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := prefix.IsSentinel(tt.value); got != tt.wantPrefix {
				t.Errorf("prefix IsSentinel(%q) = %v, want %v", tt.value, got, tt.wantPrefix)
			}
			if got := exact.IsSentinel(tt.value); got != tt.wantExact {
				t.Errorf("exact IsSentinel(%q) = %v, want %v", tt.value, got, tt.wantExact)
			}
		})
	}
}

func TestParseSentinelRule(t *testing.T) {
	tests := []struct {
		in      string
		want    SentinelRule
		wantErr bool
	}{
		{"", SentinelPrefix, false},
		{"prefix", SentinelPrefix, false},
		{"EXACT", SentinelExact, false},
		{"fuzzy", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSentinelRule(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSentinelRule(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSentinelRule(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
