package threat

import (
	"testing"

	"gosniff/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		rec  model.PacketRecord
		want model.ThreatLevel
	}{
		{
			name: "dns query to public resolver",
			rec:  model.PacketRecord{Protocol: "UDP", DstIP: "8.8.8.8", SrcPort: 51234, DstPort: 53, Size: 64},
			want: model.ThreatSafe,
		},
		{
			name: "rdp to public host",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "203.0.113.7", SrcPort: 51000, DstPort: 3389, Size: 100},
			want: model.ThreatMedium,
		},
		{
			name: "telnet into 10.0.0 subnet",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "10.0.0.5", SrcPort: 40000, DstPort: 23, Size: 80},
			want: model.ThreatMedium,
		},
		{
			name: "icmp ping on the lan",
			rec:  model.PacketRecord{Protocol: "ICMP", SrcIP: "192.168.1.2", DstIP: "192.168.1.1", Size: 84},
			want: model.ThreatSafe,
		},
		{
			name: "small icmp to public host",
			rec:  model.PacketRecord{Protocol: "ICMP", DstIP: "198.51.100.1", Size: 40},
			want: model.ThreatLow,
		},
		{
			name: "udp high port to link local",
			rec:  model.PacketRecord{Protocol: "UDP", DstIP: "169.254.10.10", SrcPort: 50001, DstPort: 55555, Size: 120},
			want: model.ThreatMedium,
		},
		{
			name: "oversized smb to public host",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "203.0.113.9", SrcPort: 50000, DstPort: 445, Size: 2000},
			want: model.ThreatMedium,
		},
		{
			name: "smb into 10.0.0 subnet undersized",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "10.0.0.9", SrcPort: 50000, DstPort: 445, Size: 30},
			want: model.ThreatHigh,
		},
		{
			name: "everything wrong at once",
			rec:  model.PacketRecord{Protocol: "UDP", DstIP: "169.254.1.1", SrcPort: 50000, DstPort: 3389, Size: 2000},
			want: model.ThreatCritical,
		},
		{
			name: "portless tcp to loopback",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "127.0.0.1", Size: 100},
			want: model.ThreatSafe,
		},
		{
			name: "source port fallback",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "203.0.113.4", SrcPort: 3389, Size: 100},
			want: model.ThreatMedium,
		},
		{
			name: "https over ipv6",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "2001:db8::1", SrcPort: 40000, DstPort: 443, Size: 100},
			want: model.ThreatSafe,
		},
		{
			name: "ipv6 link local",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "fe80::1", SrcPort: 40000, DstPort: 443, Size: 100},
			want: model.ThreatSafe,
		},
		{
			name: "upper end of 172 private block",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "172.31.255.254", SrcPort: 40000, DstPort: 443, Size: 100},
			want: model.ThreatSafe,
		},
		{
			name: "just past the 172 private block",
			rec:  model.PacketRecord{Protocol: "TCP", DstIP: "172.32.0.1", SrcPort: 40000, DstPort: 443, Size: 100},
			want: model.ThreatSafe,
		},
	}

	for _, tc := range cases {
		got := Classify(&tc.rec)
		if got != tc.want {
			t.Errorf("%s: Classify() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	rec := model.PacketRecord{Protocol: "UDP", DstIP: "169.254.1.1", SrcPort: 50000, DstPort: 3389, Size: 2000}
	first := Classify(&rec)
	for i := 0; i < 10; i++ {
		if got := Classify(&rec); got != first {
			t.Fatalf("Classify() not deterministic: got %v then %v", first, got)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.99.1", true},
		{"127.0.0.1", true},
		{"172.15.255.255", false},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.0", false},
		{"169.254.1.1", false},
		{"8.8.8.8", false},
		{"::1", true},
		{"fe80::abcd", true},
		{"2001:db8::1", false},
		{"not-an-ip", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsPrivateIP(tc.addr); got != tc.want {
			t.Errorf("IsPrivateIP(%q) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}

func TestThreatLevelOrdering(t *testing.T) {
	levels := []model.ThreatLevel{
		model.ThreatSafe, model.ThreatLow, model.ThreatMedium,
		model.ThreatHigh, model.ThreatCritical,
	}
	for i := 1; i < len(levels); i++ {
		if !(levels[i-1] < levels[i]) {
			t.Errorf("expected %v < %v", levels[i-1], levels[i])
		}
	}
}
