// Generates a synthetic capture file for gosniff -r. The traffic mix
// covers every protocol branch, the application detector, and both ends
// of the threat scale, so a replay lights up the whole dashboard.
package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}

	serializeOpts = gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}

	httpRequest = []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\nUser-Agent: gosniff-sample\r\n\r\n")
)

func main() {
	outputFile := flag.String("o", "sample.pcap", "Output pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed (fixed seed gives a reproducible capture)")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	r := rand.New(rand.NewSource(*seed))
	ts := time.Now().Add(-time.Duration(*packetCount) * 5 * time.Millisecond)

	log.Printf("Generating %d packets into %s...", *packetCount, *outputFile)

	for i := 0; i < *packetCount; i++ {
		data, err := buildPacket(r)
		if err != nil {
			log.Fatalf("Failed to serialize packet: %v", err)
		}

		ts = ts.Add(time.Duration(1+r.Intn(9)) * time.Millisecond)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}

		if (i+1)%100000 == 0 {
			log.Printf("Generated %d packets...", i+1)
		}
	}

	log.Printf("Successfully generated %d packets into %s.", *packetCount, *outputFile)
}

// buildPacket picks one traffic profile. Roughly two thirds of the mix is
// ordinary web and DNS traffic; the rest trips individual risk signals.
func buildPacket(r *rand.Rand) ([]byte, error) {
	switch r.Intn(12) {
	case 0, 1, 2:
		// Plain HTTP request, detected by payload sniffing.
		return tcpPacket(r, lanIP(r), net.IPv4(93, 184, 216, 34), ephemeral(r), 80, httpRequest)
	case 3, 4, 5:
		// HTTPS with an opaque payload.
		return tcpPacket(r, lanIP(r), net.IPv4(104, 16, 132, 229), ephemeral(r), 443, randomPayload(r, 100, 1200))
	case 6, 7:
		// DNS lookup.
		return udpPacket(r, lanIP(r), net.IPv4(8, 8, 8, 8), ephemeral(r), 53, randomPayload(r, 30, 60))
	case 8:
		// SSH session inside the LAN.
		return tcpPacket(r, lanIP(r), net.IPv4(192, 168, 1, 1), ephemeral(r), 22, randomPayload(r, 60, 300))
	case 9:
		// RDP attempt against a public host, scores well into Medium.
		return tcpPacket(r, lanIP(r), net.IPv4(203, 0, 113, 99), ephemeral(r), 3389, nil)
	case 10:
		// UDP to a high port on a 10.0.0.x target, several signals at once.
		return udpPacket(r, lanIP(r), net.IPv4(10, 0, 0, 23), ephemeral(r), 55555, randomPayload(r, 200, 600))
	default:
		// ICMP echo to a public resolver.
		return icmpPacket(r, lanIP(r), net.IPv4(1, 1, 1, 1))
	}
}

func lanIP(r *rand.Rand) net.IP {
	return net.IPv4(192, 168, 1, byte(2+r.Intn(50)))
}

func ephemeral(r *rand.Rand) uint16 {
	return uint16(49153 + r.Intn(16382))
}

func randomPayload(r *rand.Rand, min, max int) []byte {
	payload := make([]byte, min+r.Intn(max-min))
	r.Read(payload)
	return payload
}

func tcpPacket(r *rand.Rand, srcIP, dstIP net.IP, srcPort, dstPort uint16, payload []byte) ([]byte, error) {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolTCP, SrcIP: srcIP, DstIP: dstIP}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     r.Uint32(),
		PSH:     len(payload) > 0,
		ACK:     true,
		Window:  14600,
	}
	tcp.SetNetworkLayerForChecksum(ip)
	return serialize(eth, ip, tcp, gopacket.Payload(payload))
}

func udpPacket(r *rand.Rand, srcIP, dstIP net.IP, srcPort, dstPort uint16, payload []byte) ([]byte, error) {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: srcIP, DstIP: dstIP}
	udp := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	udp.SetNetworkLayerForChecksum(ip)
	return serialize(eth, ip, udp, gopacket.Payload(payload))
}

func icmpPacket(r *rand.Rand, srcIP, dstIP net.IP) ([]byte, error) {
	eth := &layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: srcIP, DstIP: dstIP}
	icmp := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       uint16(r.Intn(65536)),
		Seq:      uint16(r.Intn(65536)),
	}
	return serialize(eth, ip, icmp, gopacket.Payload(randomPayload(r, 32, 56)))
}

func serialize(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, serializeOpts, ls...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
