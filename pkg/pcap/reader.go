package pcap

import (
	"log"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
)

// Reader reads packets from a pcap file without libpcap.
type Reader struct {
	file   *os.File
	source *gopacket.PacketSource
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{file: f, source: gopacket.NewPacketSource(r, r.LinkType())}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// ReadPackets reads all packets from the pcap file and sends the parsed
// Packet to the provided channel. It closes the channel when done.
func (r *Reader) ReadPackets(out chan<- *Packet) {
	defer close(out)

	skipped := 0
	for packet := range r.source.Packets() {
		p, err := ParsePacket(packet)
		if err != nil {
			skipped++
			continue
		}
		out <- p
	}
	if skipped > 0 {
		log.Printf("Skipped %d non IPv4 TCP/UDP packets", skipped)
	}
}
