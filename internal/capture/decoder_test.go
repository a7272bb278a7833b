package capture

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	testSrcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testDstMAC = net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb}
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		t.Fatalf("failed to serialize test packet: %v", err)
	}
	return buf.Bytes()
}

func captureInfo(data []byte) gopacket.CaptureInfo {
	return gopacket.CaptureInfo{
		Timestamp:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CaptureLength: len(data),
		Length:        len(data),
	}
}

func tcpFrame(t *testing.T, srcIP, dstIP string, srcPort, dstPort uint16, payload []byte, mod func(*layers.TCP)) []byte {
	t.Helper()
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, SrcIP: net.ParseIP(srcIP), DstIP: net.ParseIP(dstIP), Protocol: layers.IPProtocolTCP}
	tcp := &layers.TCP{SrcPort: layers.TCPPort(srcPort), DstPort: layers.TCPPort(dstPort)}
	if mod != nil {
		mod(tcp)
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("SetNetworkLayerForChecksum: %v", err)
	}
	return serialize(t, eth, ip, tcp, gopacket.Payload(payload))
}

func TestDecodeTCP(t *testing.T) {
	data := tcpFrame(t, "192.168.1.2", "93.184.216.34", 51000, 443, nil, func(tcp *layers.TCP) {
		tcp.SYN = true
	})

	rec := Decode(data, captureInfo(data), 7)

	if rec.Number != 7 {
		t.Errorf("Number = %d, want 7", rec.Number)
	}
	if rec.SrcMAC != "00:11:22:33:44:55" || rec.DstMAC != "66:77:88:99:aa:bb" {
		t.Errorf("MACs = %s / %s", rec.SrcMAC, rec.DstMAC)
	}
	if rec.SrcIP != "192.168.1.2" || rec.DstIP != "93.184.216.34" {
		t.Errorf("IPs = %s / %s", rec.SrcIP, rec.DstIP)
	}
	if rec.Protocol != "TCP" {
		t.Errorf("Protocol = %q, want TCP", rec.Protocol)
	}
	if rec.SrcPort != 51000 || rec.DstPort != 443 {
		t.Errorf("ports = %d / %d", rec.SrcPort, rec.DstPort)
	}
	if rec.Flags != "SYN" {
		t.Errorf("Flags = %q, want SYN", rec.Flags)
	}
	if rec.AppProtocol != "HTTPS" {
		t.Errorf("AppProtocol = %q, want HTTPS", rec.AppProtocol)
	}
	if rec.Description != "Secure web browsing (encrypted)" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Size != len(data) {
		t.Errorf("Size = %d, want %d", rec.Size, len(data))
	}
}

func TestDecodeTCPFlagOrder(t *testing.T) {
	data := tcpFrame(t, "10.0.1.2", "10.0.1.3", 1234, 5678, nil, func(tcp *layers.TCP) {
		tcp.FIN = true
		tcp.PSH = true
		tcp.ACK = true
	})
	rec := Decode(data, captureInfo(data), 1)
	if rec.Flags != "FIN PSH ACK" {
		t.Errorf("Flags = %q, want \"FIN PSH ACK\"", rec.Flags)
	}
}

func TestDecodeHTTPSniffing(t *testing.T) {
	get := []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n")
	data := tcpFrame(t, "192.168.1.2", "93.184.216.34", 51000, 80, get, func(tcp *layers.TCP) {
		tcp.PSH = true
		tcp.ACK = true
	})
	rec := Decode(data, captureInfo(data), 1)
	if rec.AppProtocol != "HTTP" {
		t.Errorf("AppProtocol = %q, want HTTP", rec.AppProtocol)
	}
	if rec.Description != "Web browsing (HTTP request/response)" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.PayloadSize != len(get) {
		t.Errorf("PayloadSize = %d, want %d", rec.PayloadSize, len(get))
	}

	// Same port, no HTTP signature in the payload.
	data = tcpFrame(t, "192.168.1.2", "93.184.216.34", 51000, 80, []byte{0xde, 0xad, 0xbe, 0xef}, nil)
	rec = Decode(data, captureInfo(data), 2)
	if rec.AppProtocol != "Web Traffic" {
		t.Errorf("AppProtocol = %q, want Web Traffic", rec.AppProtocol)
	}
	if rec.Description != "Web-related traffic" {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestDecodeUDPDNS(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, SrcIP: net.ParseIP("192.168.1.2"), DstIP: net.ParseIP("8.8.8.8"), Protocol: layers.IPProtocolUDP}
	udp := &layers.UDP{SrcPort: 50123, DstPort: 53}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("SetNetworkLayerForChecksum: %v", err)
	}
	data := serialize(t, eth, ip, udp, gopacket.Payload([]byte("query")))

	rec := Decode(data, captureInfo(data), 1)
	if rec.Protocol != "UDP" {
		t.Errorf("Protocol = %q, want UDP", rec.Protocol)
	}
	if rec.AppProtocol != "DNS" {
		t.Errorf("AppProtocol = %q, want DNS", rec.AppProtocol)
	}
	if rec.Description != "Domain name lookup" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Flags != "" {
		t.Errorf("UDP record carries TCP flags: %q", rec.Flags)
	}
}

func TestDecodeICMP(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, SrcIP: net.ParseIP("192.168.1.2"), DstIP: net.ParseIP("192.168.1.1"), Protocol: layers.IPProtocolICMPv4}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0)}
	data := serialize(t, eth, ip, icmp)

	rec := Decode(data, captureInfo(data), 1)
	if rec.Protocol != "ICMP" {
		t.Errorf("Protocol = %q, want ICMP", rec.Protocol)
	}
	if rec.SrcPort != 0 || rec.DstPort != 0 {
		t.Errorf("ICMP record carries ports: %d / %d", rec.SrcPort, rec.DstPort)
	}
	if rec.Description != "ICMP ping/echo message" {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestDecodeIPv6(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv6}
	ip := &layers.IPv6{Version: 6, HopLimit: 64, SrcIP: net.ParseIP("2001:db8::1"), DstIP: net.ParseIP("2001:db8::2"), NextHeader: layers.IPProtocolTCP}
	tcp := &layers.TCP{SrcPort: 40000, DstPort: 22, SYN: true}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("SetNetworkLayerForChecksum: %v", err)
	}
	data := serialize(t, eth, ip, tcp)

	rec := Decode(data, captureInfo(data), 1)
	if rec.SrcIP != "2001:db8::1" || rec.DstIP != "2001:db8::2" {
		t.Errorf("IPs = %s / %s", rec.SrcIP, rec.DstIP)
	}
	if rec.Protocol != "TCP" {
		t.Errorf("Protocol = %q, want TCP", rec.Protocol)
	}
	if rec.AppProtocol != "SSH" {
		t.Errorf("AppProtocol = %q, want SSH", rec.AppProtocol)
	}
}

func TestDecodeARP(t *testing.T) {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeARP}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(testSrcMAC),
		SourceProtAddress: []byte{10, 0, 0, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 2},
	}
	data := serialize(t, eth, arp)

	rec := Decode(data, captureInfo(data), 1)
	if rec.Protocol != "ARP" {
		t.Errorf("Protocol = %q, want ARP", rec.Protocol)
	}
	if rec.SrcIP != "" || rec.DstIP != "" {
		t.Errorf("ARP record carries IPs: %s / %s", rec.SrcIP, rec.DstIP)
	}
	if rec.Description != "ARP network traffic" {
		t.Errorf("Description = %q", rec.Description)
	}
}

func TestDecodeGarbage(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	rec := Decode(data, gopacket.CaptureInfo{}, 1)

	if rec.Protocol != "Unknown" {
		t.Errorf("Protocol = %q, want Unknown", rec.Protocol)
	}
	if rec.Description != "Unknown packet" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.Size != len(data) {
		t.Errorf("Size = %d, want %d", rec.Size, len(data))
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp not defaulted")
	}
}
