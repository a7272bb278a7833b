// Package threat scores decoded packets with a fixed heuristic and attaches
// coarse geolocation hints. Everything here is pure and table-driven; no
// external services are consulted.
package threat

import (
	"net/netip"
	"strings"

	"gosniff/internal/model"
)

// Ports that commonly carry remote-admin or lateral-movement traffic.
var highRiskPorts = map[uint16]struct{}{
	1433: {}, // MSSQL
	3389: {}, // RDP
	5900: {}, // VNC
	23:   {}, // Telnet
	135:  {}, // MS RPC
	139:  {}, // NetBIOS
	445:  {}, // SMB
}

// Legacy cleartext mail and file-transfer ports.
var mediumRiskPorts = map[uint16]struct{}{
	21: {}, 25: {}, 110: {}, 143: {}, 993: {}, 995: {},
}

// Destination prefixes that raise the score regardless of the private-range
// check. These are literal string prefixes, not CIDR blocks.
var suspiciousDstPrefixes = []string{"10.0.0.", "169.254."}

const ephemeralPortFloor = 49152

// Classify assigns a threat level from an additive risk score. The same
// record always produces the same level.
//
// Signals: risky destination/source port (+3 high, +2 medium, +1 above the
// ephemeral floor), non-private destination (+1), suspicious destination
// prefix (+2), anomalous frame size (+1), bare ICMP (+1), UDP to anything
// but port 53 (+1).
func Classify(r *model.PacketRecord) model.ThreatLevel {
	score := 0

	if port, ok := signalPort(r); ok {
		if _, hit := highRiskPorts[port]; hit {
			score += 3
		} else if _, hit := mediumRiskPorts[port]; hit {
			score += 2
		} else if port > ephemeralPortFloor {
			score++
		}
	}

	if r.DstIP != "" {
		if !IsPrivateIP(r.DstIP) {
			score++
		}
		for _, prefix := range suspiciousDstPrefixes {
			if strings.HasPrefix(r.DstIP, prefix) {
				score += 2
				break
			}
		}
	}

	if r.Size > 1500 || r.Size < 64 {
		score++
	}

	switch r.Protocol {
	case "ICMP":
		score++
	case "UDP":
		if r.DstPort != 53 {
			score++
		}
	}

	return levelFor(score)
}

// signalPort picks the port used for scoring, preferring the destination.
func signalPort(r *model.PacketRecord) (uint16, bool) {
	if r.DstPort != 0 {
		return r.DstPort, true
	}
	if r.SrcPort != 0 {
		return r.SrcPort, true
	}
	return 0, false
}

// Score bands: 0-1 Safe, 2-3 Low, 4-5 Medium, 6-7 High, 8+ Critical.
func levelFor(score int) model.ThreatLevel {
	switch {
	case score >= 8:
		return model.ThreatCritical
	case score >= 6:
		return model.ThreatHigh
	case score >= 4:
		return model.ThreatMedium
	case score >= 2:
		return model.ThreatLow
	}
	return model.ThreatSafe
}

var privateV4Blocks = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
}

// IsPrivateIP reports whether addr sits in a private or loopback range.
// IPv6 loopback and link-local count as private; IPv4 link-local
// (169.254.0.0/16) does not.
func IsPrivateIP(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	if ip.Is4() || ip.Is4In6() {
		v4 := netip.AddrFrom4(ip.As4())
		for _, block := range privateV4Blocks {
			if block.Contains(v4) {
				return true
			}
		}
		return false
	}
	return ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
