package pcap

import (
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Packet holds the fields of a decoded IPv4 TCP or UDP packet that flow
// aggregation needs.
type Packet struct {
	Timestamp time.Time
	SrcIP     net.IP
	DstIP     net.IP
	SrcPort   uint16
	DstPort   uint16
	Protocol  string
	Length    int
	SYN       bool
	FIN       bool
	RST       bool
}

// ParsePacket extracts key information from a decoded packet.
func ParsePacket(packet gopacket.Packet) (*Packet, error) {
	p := &Packet{
		Timestamp: time.Now(),
		Length:    len(packet.Data()),
	}
	if meta := packet.Metadata(); meta != nil {
		p.Timestamp = meta.Timestamp
		if meta.Length > 0 {
			p.Length = meta.Length
		}
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)
	p.SrcIP = ip.SrcIP
	p.DstIP = ip.DstIP

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		p.SrcPort = uint16(tcp.SrcPort)
		p.DstPort = uint16(tcp.DstPort)
		p.Protocol = "tcp"
		p.SYN, p.FIN, p.RST = tcp.SYN, tcp.FIN, tcp.RST
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		p.SrcPort = uint16(udp.SrcPort)
		p.DstPort = uint16(udp.DstPort)
		p.Protocol = "udp"
	} else {
		return nil, fmt.Errorf("not a TCP or UDP packet")
	}

	return p, nil
}
