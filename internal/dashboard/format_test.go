package dashboard

import (
	"testing"

	"gosniff/internal/model"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		// Above GB the unit saturates instead of rolling over.
		{3 * 1024 * 1024 * 1024 * 1024, "3072.0 GB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLastOctet(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"192.168.1.50", "50"},
		{"10.0.0.1", "1"},
		{"fe80::1", "fe80::1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := lastOctet(tc.in); got != tc.want {
			t.Errorf("lastOctet(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestThreatIcon(t *testing.T) {
	cases := []struct {
		level model.ThreatLevel
		want  string
	}{
		{model.ThreatSafe, "✅"},
		{model.ThreatLow, "🟡"},
		{model.ThreatMedium, "🟠"},
		{model.ThreatHigh, "🔴"},
		{model.ThreatCritical, "💀"},
	}
	for _, tc := range cases {
		if got := threatIcon(tc.level); got != tc.want {
			t.Errorf("threatIcon(%v) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestCountryFlag(t *testing.T) {
	if got := countryFlag("Australia"); got != "🇦🇺" {
		t.Errorf("countryFlag(Australia) = %q", got)
	}
	if got := countryFlag("Local Network"); got != "🏠" {
		t.Errorf("countryFlag(Local Network) = %q", got)
	}
	if got := countryFlag("Atlantis"); got != "🌐" {
		t.Errorf("countryFlag(Atlantis) = %q", got)
	}
}

func TestBar(t *testing.T) {
	if got := bar(5, 10, 30); len([]rune(got)) != 15 {
		t.Errorf("bar(5, 10, 30) has %d cells, want 15", len([]rune(got)))
	}
	if got := bar(10, 10, 30); len([]rune(got)) != 30 {
		t.Errorf("full bar has %d cells, want 30", len([]rune(got)))
	}
	if got := bar(1, 0, 30); got != "" {
		t.Errorf("bar with zero total = %q, want empty", got)
	}
}

func TestCenter(t *testing.T) {
	if got := center("ab", 6); got != "  ab  " {
		t.Errorf("center(ab, 6) = %q", got)
	}
	if got := center("abc", 6); got != " abc  " {
		t.Errorf("center(abc, 6) = %q", got)
	}
	if got := center("abcdefgh", 4); got != "abcdefgh" {
		t.Errorf("center must not truncate: %q", got)
	}
}

func TestSortedCountsOrder(t *testing.T) {
	counts := map[string]uint64{"UDP": 3, "TCP": 9, "ICMP": 3, "ARP": 1}
	got := sortedCounts(counts)
	wantNames := []string{"TCP", "ICMP", "UDP", "ARP"}
	if len(got) != len(wantNames) {
		t.Fatalf("len = %d, want %d", len(got), len(wantNames))
	}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Errorf("position %d = %s, want %s (ties break by name)", i, got[i].Name, name)
		}
	}
}
