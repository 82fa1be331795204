package processor

import (
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// Builder turns raw packets into PacketRecords. It keeps a reusable
// DecodingLayerParser, so a Builder must only be used from one goroutine —
// the capture loop owns it.
type Builder struct {
	parser *gopacket.DecodingLayerParser

	eth     layers.Ethernet
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	payload gopacket.Payload

	decoded []gopacket.LayerType

	start time.Time
}

// NewBuilder creates a builder. Elapsed times on records are measured from
// start, the beginning of the capture session.
func NewBuilder(start time.Time) *Builder {
	b := &Builder{start: start}
	b.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet,
		&b.eth,
		&b.ip4,
		&b.ip6,
		&b.tcp,
		&b.udp,
		&b.payload,
	)
	b.parser.IgnoreUnsupported = true
	return b
}

// Build extracts a record from one raw packet. Returns (nil, false) when
// the packet carries no network-layer header or cannot be parsed; it never
// panics on truncated input.
func (b *Builder) Build(data []byte, ci gopacket.CaptureInfo) (*models.PacketRecord, bool) {
	b.decoded = b.decoded[:0]
	if err := b.parser.DecodeLayers(data, &b.decoded); err != nil {
		// Truncated or unknown framing; whatever was decoded before the
		// error is still usable, so fall through and check for an IP layer.
		if len(b.decoded) == 0 {
			return nil, false
		}
	}

	ts := ci.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	size := ci.Length
	if size == 0 {
		size = len(data)
	}

	rec := &models.PacketRecord{
		Timestamp: ts,
		Elapsed:   ts.Sub(b.start),
		Size:      size,
	}

	hasNetwork := false
	for _, layerType := range b.decoded {
		switch layerType {
		case layers.LayerTypeIPv4:
			hasNetwork = true
			rec.SrcIP = b.ip4.SrcIP.String()
			rec.DstIP = b.ip4.DstIP.String()
			rec.Protocol = ProtocolName(int(b.ip4.Protocol))
		case layers.LayerTypeIPv6:
			hasNetwork = true
			rec.SrcIP = b.ip6.SrcIP.String()
			rec.DstIP = b.ip6.DstIP.String()
			rec.Protocol = ProtocolName(int(b.ip6.NextHeader))
		case layers.LayerTypeTCP:
			rec.Transport = &models.Transport{
				SrcPort: uint16(b.tcp.SrcPort),
				DstPort: uint16(b.tcp.DstPort),
				Flags:   tcpFlags(&b.tcp),
			}
		case layers.LayerTypeUDP:
			rec.Transport = &models.Transport{
				SrcPort: uint16(b.udp.SrcPort),
				DstPort: uint16(b.udp.DstPort),
			}
		}
	}

	if !hasNetwork {
		return nil, false
	}
	return rec, true
}

// tcpFlags renders the set TCP flags as "SYN|ACK" style text.
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
	if tcp.ECE {
		flags = append(flags, "ECE")
	}
	if tcp.CWR {
		flags = append(flags, "CWR")
	}
	return strings.Join(flags, "|")
}
