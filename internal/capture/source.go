package capture

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gosniff/internal/logging"
	"gosniff/internal/model"
	"gosniff/internal/threat"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// DefaultSnapLen is the capture snapshot length used when the config does
// not override it.
const DefaultSnapLen int32 = 1600

// PCAP_IF_LOOPBACK from pcap.h.
const pcapLoopbackFlag = 0x00000001

// Source wraps a pcap handle, live or offline.
type Source struct {
	handle  *pcap.Handle
	name    string
	offline bool
}

// OpenLive starts capturing on a network interface.
func OpenLive(iface string, snaplen int32, promiscuous bool) (*Source, error) {
	if snaplen <= 0 {
		snaplen = DefaultSnapLen
	}
	handle, err := pcap.OpenLive(iface, snaplen, promiscuous, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("failed to open interface %s: %w", iface, err)
	}
	return &Source{handle: handle, name: iface}, nil
}

// OpenOffline replays a capture file.
func OpenOffline(path string) (*Source, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}
	return &Source{handle: handle, name: path, offline: true}, nil
}

// Name returns the interface name or file path behind the source.
func (s *Source) Name() string { return s.name }

// Close releases the pcap handle. Closing also unblocks a Stream that is
// waiting on the handle.
func (s *Source) Close() {
	if s.handle != nil {
		s.handle.Close()
	}
}

// Device describes one capture-capable interface.
type Device struct {
	Name        string
	Description string
	Addresses   []string
	Loopback    bool
}

// ListInterfaces enumerates the capture devices pcap can see.
func ListInterfaces() ([]Device, error) {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate interfaces: %w", err)
	}
	out := make([]Device, 0, len(devs))
	for _, d := range devs {
		dev := Device{
			Name:        d.Name,
			Description: d.Description,
			Loopback:    d.Flags&pcapLoopbackFlag != 0,
		}
		for _, addr := range d.Addresses {
			dev.Addresses = append(dev.Addresses, addr.IP.String())
		}
		out = append(out, dev)
	}
	return out, nil
}

// FirstActiveInterface picks a default capture device: the first
// non-loopback one with at least one address assigned.
func FirstActiveInterface() (string, error) {
	devs, err := ListInterfaces()
	if err != nil {
		return "", err
	}
	for _, d := range devs {
		if d.Loopback || d.Name == "any" || len(d.Addresses) == 0 {
			continue
		}
		return d.Name, nil
	}
	return "", errors.New("no active capture interface found")
}

// Stream reads frames from a source and emits decoded, classified, and
// filtered records until the source ends, the count limit is reached, or
// the context is cancelled.
type Stream struct {
	src    *Source
	filter *Filter
	limit  uint64
	out    chan *model.PacketRecord
}

// NewStream wires a source to the processing pipeline. limit 0 means
// unlimited; channelSize controls how far capture may run ahead of the
// consumer.
func NewStream(src *Source, filter *Filter, limit uint64, channelSize int) *Stream {
	if channelSize <= 0 {
		channelSize = 1000
	}
	return &Stream{
		src:    src,
		filter: filter,
		limit:  limit,
		out:    make(chan *model.PacketRecord, channelSize),
	}
}

// Out delivers the records. The channel closes when the stream stops.
func (s *Stream) Out() <-chan *model.PacketRecord { return s.out }

// Run pumps the source. It closes Out on return and is meant to run as a
// goroutine.
func (s *Stream) Run(ctx context.Context) {
	defer close(s.out)

	packetSource := gopacket.NewPacketSource(s.src.handle, s.src.handle.LinkType())
	packets := packetSource.Packets()

	var captured uint64
	for {
		select {
		case <-ctx.Done():
			return
		case packet, ok := <-packets:
			if !ok {
				log.Printf("Capture source %s ended.", s.src.name)
				return
			}

			rec := Decode(packet.Data(), packet.Metadata().CaptureInfo, captured+1)
			if !s.filter.Match(rec) {
				logging.Debugf("filter dropped %s packet %s -> %s", rec.Protocol, rec.SrcIP, rec.DstIP)
				continue
			}
			captured++
			rec.ThreatLevel = threat.Classify(rec)
			rec.Geo = threat.LookupGeo(rec.DstIP)

			select {
			case s.out <- rec:
			case <-ctx.Done():
				return
			}

			if s.limit > 0 && captured >= s.limit {
				log.Printf("Reached capture limit of %d packets.", s.limit)
				return
			}
		}
	}
}
