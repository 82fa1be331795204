package processor

import (
	"net"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSrcMAC = net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	testDstMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	testSrcIP  = net.IPv4(192, 168, 1, 1).To4()
	testDstIP  = net.IPv4(192, 168, 1, 2).To4()
)

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func tcpPacket(t *testing.T, srcPort, dstPort uint16, payloadLen int) []byte {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolTCP, SrcIP: testSrcIP, DstIP: testDstIP}
	tcp := &layers.TCP{SrcPort: layers.TCPPort(srcPort), DstPort: layers.TCPPort(dstPort), SYN: true, ACK: true, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	return serialize(t, eth, ip, tcp, gopacket.Payload(make([]byte, payloadLen)))
}

func udpPacket(t *testing.T, srcPort, dstPort uint16) []byte {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: testSrcIP, DstIP: testDstIP}
	udp := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	return serialize(t, eth, ip, udp, gopacket.Payload([]byte("ping")))
}

func icmpPacket(t *testing.T) []byte {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: testSrcIP, DstIP: testDstIP}
	icmp := &layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0)}
	return serialize(t, eth, ip, icmp, gopacket.Payload([]byte("echo")))
}

func arpPacket(t *testing.T) []byte {
	eth := &layers.Ethernet{SrcMAC: testSrcMAC, DstMAC: testDstMAC, EthernetType: layers.EthernetTypeARP}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   testSrcMAC,
		SourceProtAddress: testSrcIP,
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    testDstIP,
	}
	return serialize(t, eth, arp)
}

func captureInfo(data []byte) gopacket.CaptureInfo {
	return gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
}

func TestBuildTCPRecord(t *testing.T) {
	b := NewBuilder(time.Now())
	data := tcpPacket(t, 1234, 80, 100)

	rec, ok := b.Build(data, captureInfo(data))
	require.True(t, ok)

	assert.Equal(t, "192.168.1.1", rec.SrcIP)
	assert.Equal(t, "192.168.1.2", rec.DstIP)
	assert.Equal(t, "TCP", rec.Protocol)
	assert.Equal(t, len(data), rec.Size)

	require.NotNil(t, rec.Transport)
	assert.Equal(t, uint16(1234), rec.Transport.SrcPort)
	assert.Equal(t, uint16(80), rec.Transport.DstPort)
	assert.Contains(t, rec.Transport.Flags, "SYN")
	assert.Contains(t, rec.Transport.Flags, "ACK")
}

func TestBuildUDPRecord(t *testing.T) {
	b := NewBuilder(time.Now())
	data := udpPacket(t, 5353, 53)

	rec, ok := b.Build(data, captureInfo(data))
	require.True(t, ok)

	assert.Equal(t, "UDP", rec.Protocol)
	require.NotNil(t, rec.Transport)
	assert.Equal(t, uint16(5353), rec.Transport.SrcPort)
	assert.Equal(t, uint16(53), rec.Transport.DstPort)
	assert.Empty(t, rec.Transport.Flags)
}

func TestBuildICMPRecordHasNoTransport(t *testing.T) {
	b := NewBuilder(time.Now())
	data := icmpPacket(t)

	rec, ok := b.Build(data, captureInfo(data))
	require.True(t, ok)

	assert.Equal(t, "ICMP", rec.Protocol)
	assert.Nil(t, rec.Transport)
}

func TestBuildSkipsPacketWithoutNetworkLayer(t *testing.T) {
	b := NewBuilder(time.Now())
	data := arpPacket(t)

	rec, ok := b.Build(data, captureInfo(data))
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestBuildSurvivesGarbage(t *testing.T) {
	b := NewBuilder(time.Now())

	for _, data := range [][]byte{
		nil,
		{},
		{0x01},
		{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef},
		tcpPacket(t, 1, 2, 10)[:20], // truncated mid-IP-header
	} {
		assert.NotPanics(t, func() {
			rec, ok := b.Build(data, captureInfo(data))
			if ok {
				assert.NotNil(t, rec)
			}
		})
	}
}

func TestBuildElapsedIsDerivedFromSessionStart(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)
	b := NewBuilder(start)
	data := icmpPacket(t)

	rec, ok := b.Build(data, captureInfo(data))
	require.True(t, ok)
	assert.GreaterOrEqual(t, rec.Elapsed, 10*time.Second)
}

// Builder state is reused between packets; a TCP packet followed by an ICMP
// packet must not leak transport fields into the second record.
func TestBuildDoesNotLeakTransportAcrossPackets(t *testing.T) {
	b := NewBuilder(time.Now())

	tcpData := tcpPacket(t, 1234, 80, 10)
	_, ok := b.Build(tcpData, captureInfo(tcpData))
	require.True(t, ok)

	icmpData := icmpPacket(t)
	rec, ok := b.Build(icmpData, captureInfo(icmpData))
	require.True(t, ok)
	assert.Nil(t, rec.Transport)
}
