// Package capture opens live interfaces or capture files and turns raw
// frames into PacketRecords.
package capture

import (
	"fmt"
	"strings"
	"time"

	"gosniff/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Sniff at most this many payload bytes for an HTTP signature.
const httpSniffLen = 100

// Decode turns one link-layer frame into a PacketRecord. Decoding never
// fails: fields that cannot be extracted keep their zero values and the
// record is returned anyway.
func Decode(data []byte, ci gopacket.CaptureInfo, number uint64) *model.PacketRecord {
	rec := &model.PacketRecord{
		Timestamp:   ci.Timestamp,
		Number:      number,
		Size:        ci.Length,
		Protocol:    "Unknown",
		Description: "Unknown packet",
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Size == 0 {
		rec.Size = len(data)
	}

	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	l := packet.Layer(layers.LayerTypeEthernet)
	if l == nil {
		return rec
	}
	eth := l.(*layers.Ethernet)
	rec.SrcMAC = eth.SrcMAC.String()
	rec.DstMAC = eth.DstMAC.String()
	rec.Protocol = eth.EthernetType.String()

	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		rec.SrcIP = ip.SrcIP.String()
		rec.DstIP = ip.DstIP.String()
		rec.Protocol = ipProtocolName(ip.Protocol)
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		rec.SrcIP = ip.SrcIP.String()
		rec.DstIP = ip.DstIP.String()
		rec.Protocol = ipProtocolName(ip.NextHeader)
	}

	var payload []byte
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		rec.Protocol = "TCP"
		rec.SrcPort = uint16(tcp.SrcPort)
		rec.DstPort = uint16(tcp.DstPort)
		rec.Flags = tcpFlags(tcp)
		rec.PayloadSize = len(tcp.Payload)
		payload = tcp.Payload
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		rec.Protocol = "UDP"
		rec.SrcPort = uint16(udp.SrcPort)
		rec.DstPort = uint16(udp.DstPort)
		rec.PayloadSize = len(udp.Payload)
		payload = udp.Payload
	} else if packet.Layer(layers.LayerTypeICMPv4) != nil {
		rec.Protocol = "ICMP"
	} else if packet.Layer(layers.LayerTypeICMPv6) != nil {
		rec.Protocol = "ICMPv6"
	}

	if rec.DstPort != 0 {
		rec.AppProtocol = appProtocol(rec.DstPort, payload)
	}
	rec.Description = describe(rec)

	return rec
}

// ipProtocolName maps the transport protocols to their display names and
// falls back to gopacket's name for everything else.
func ipProtocolName(p layers.IPProtocol) string {
	switch p {
	case layers.IPProtocolTCP:
		return "TCP"
	case layers.IPProtocolUDP:
		return "UDP"
	case layers.IPProtocolICMPv4:
		return "ICMP"
	case layers.IPProtocolICMPv6:
		return "ICMPv6"
	}
	return p.String()
}

// tcpFlags renders the set TCP flags in a fixed order.
func tcpFlags(tcp *layers.TCP) string {
	var flags []string
	if tcp.FIN {
		flags = append(flags, "FIN")
	}
	if tcp.SYN {
		flags = append(flags, "SYN")
	}
	if tcp.RST {
		flags = append(flags, "RST")
	}
	if tcp.PSH {
		flags = append(flags, "PSH")
	}
	if tcp.ACK {
		flags = append(flags, "ACK")
	}
	if tcp.URG {
		flags = append(flags, "URG")
	}
	return strings.Join(flags, " ")
}

// appProtocol guesses the application protocol from the destination port,
// sniffing the payload on the web ports.
func appProtocol(dstPort uint16, payload []byte) string {
	switch dstPort {
	case 80, 8080:
		if sniffHTTP(payload) {
			return "HTTP"
		}
		return "Web Traffic"
	case 443:
		return "HTTPS"
	case 53:
		return "DNS"
	case 22:
		return "SSH"
	case 21:
		return "FTP"
	case 25:
		return "SMTP"
	case 110:
		return "POP3"
	case 143:
		return "IMAP"
	case 993:
		return "IMAPS"
	case 995:
		return "POP3S"
	}
	return ""
}

func sniffHTTP(payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	if len(payload) > httpSniffLen {
		payload = payload[:httpSniffLen]
	}
	s := string(payload)
	return strings.HasPrefix(s, "GET") || strings.HasPrefix(s, "POST") ||
		strings.HasPrefix(s, "HTTP") || strings.Contains(s, "Host:")
}

// describe builds the human-readable one-liner shown in the dashboard and
// carried into exports.
func describe(rec *model.PacketRecord) string {
	if rec.AppProtocol != "" {
		switch rec.AppProtocol {
		case "HTTP":
			return "Web browsing (HTTP request/response)"
		case "HTTPS":
			return "Secure web browsing (encrypted)"
		case "DNS":
			return "Domain name lookup"
		case "SSH":
			return "Secure shell connection"
		case "FTP":
			return "File transfer"
		case "SMTP":
			return "Email sending"
		case "Web Traffic":
			return "Web-related traffic"
		}
		return rec.AppProtocol + " communication"
	}

	switch rec.Protocol {
	case "TCP":
		if rec.SrcPort != 0 && rec.DstPort != 0 {
			return fmt.Sprintf("TCP connection from port %d to port %d", rec.SrcPort, rec.DstPort)
		}
		return "TCP connection"
	case "UDP":
		if rec.SrcPort != 0 && rec.DstPort != 0 {
			return fmt.Sprintf("UDP communication from port %d to port %d", rec.SrcPort, rec.DstPort)
		}
		return "UDP communication"
	case "ICMP":
		return "ICMP ping/echo message"
	}
	return rec.Protocol + " network traffic"
}
