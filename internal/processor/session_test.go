package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/alert"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/capture"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/geo"
	"github.com/codeWithLFN/RealTimeNetwork-Dashboard/internal/models"
)

// fakeSource replays canned packets, then reports poll timeouts forever.
type fakeSource struct {
	mu      sync.Mutex
	packets []fakePacket
	next    int
	readErr error // returned instead of packets when set
}

type fakePacket struct {
	data   []byte
	length int
}

func (f *fakeSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return nil, gopacket.CaptureInfo{}, f.readErr
	}
	if f.next >= len(f.packets) {
		return nil, gopacket.CaptureInfo{}, pcap.NextErrorTimeoutExpired
	}
	pkt := f.packets[f.next]
	f.next++
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(pkt.data),
		Length:        pkt.length,
	}
	return pkt.data, ci, nil
}

func (f *fakeSource) Stats() (capture.Stats, error) { return capture.Stats{}, nil }
func (f *fakeSource) Close() error                  { return nil }

// fixedLocator returns the same coordinates for every address.
type fixedLocator struct {
	loc models.Location
}

func (l *fixedLocator) Lookup(ctx context.Context, address string) (models.Location, error) {
	return l.loc, nil
}

func waitForCount(t *testing.T, s *Session, want uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Count() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d records, have %d", want, s.Count())
}

// End-to-end: ICMP(60) + TCP(1500, 1234→80) + UDP(200, 5353→5353) through
// the full pipeline with a "large TCP packet" alert registered.
func TestSessionEndToEnd(t *testing.T) {
	src := &fakeSource{packets: []fakePacket{
		{data: icmpPacket(t), length: 60},
		{data: tcpPacket(t, 1234, 80, 100), length: 1500},
		{data: udpPacket(t, 5353, 5353), length: 200},
	}}

	engine := alert.NewEngine()
	require.NoError(t, engine.RegisterSpec(alert.RuleSpec{
		Name:     "large-tcp",
		Protocol: "tcp",
		MinSize:  1000,
		Message:  "Large TCP packet detected",
	}))

	session := NewSession(src, nil, engine, Options{Capacity: 100})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	waitForCount(t, session, 3)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, uint64(3), session.Count())

	snap := session.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "ICMP", snap[0].Protocol)
	assert.Equal(t, "TCP", snap[1].Protocol)
	assert.Equal(t, "UDP", snap[2].Protocol)
	assert.Equal(t, 60, snap[0].Size)
	assert.Equal(t, 1500, snap[1].Size)
	assert.Equal(t, 200, snap[2].Size)

	events := engine.RecentAlerts()
	require.Len(t, events, 1)
	assert.Equal(t, "Large TCP packet detected", events[0].Message)
	assert.Equal(t, "TCP", events[0].Record.Protocol)
	assert.Equal(t, 1500, events[0].Record.Size)
}

func TestSessionSkipsMalformedPackets(t *testing.T) {
	src := &fakeSource{packets: []fakePacket{
		{data: arpPacket(t), length: 42},               // no network layer
		{data: []byte{0xde, 0xad, 0xbe}, length: 3},    // garbage
		{data: udpPacket(t, 1000, 2000), length: 150},  // valid
	}}

	session := NewSession(src, nil, alert.NewEngine(), Options{Capacity: 10})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	waitForCount(t, session, 1)
	cancel()
	require.NoError(t, <-done)

	snap := session.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "UDP", snap[0].Protocol)
}

func TestSessionEnrichesRecords(t *testing.T) {
	src := &fakeSource{packets: []fakePacket{
		{data: udpPacket(t, 1000, 2000), length: 150},
	}}
	locator := &fixedLocator{loc: models.Location{Latitude: 48.85, Longitude: 2.35}}

	session := NewSession(src, locator, alert.NewEngine(), Options{Capacity: 10})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	waitForCount(t, session, 1)
	cancel()
	require.NoError(t, <-done)

	snap := session.Snapshot()
	require.Len(t, snap, 1)
	require.NotNil(t, snap[0].Geo)
	assert.Equal(t, 48.85, snap[0].Geo.Latitude)
	assert.Equal(t, 2.35, snap[0].Geo.Longitude)
}

// A locator that fails must not prevent the record from being stored.
type failingLocator struct{}

func (failingLocator) Lookup(ctx context.Context, address string) (models.Location, error) {
	return models.Location{}, geo.ErrNotFound
}

func TestSessionEnrichmentFailureIsNonFatal(t *testing.T) {
	src := &fakeSource{packets: []fakePacket{
		{data: udpPacket(t, 1000, 2000), length: 150},
	}}

	session := NewSession(src, failingLocator{}, alert.NewEngine(), Options{Capacity: 10})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	waitForCount(t, session, 1)
	cancel()
	require.NoError(t, <-done)

	snap := session.Snapshot()
	require.Len(t, snap, 1)
	assert.Nil(t, snap[0].Geo)
}

func TestSessionTerminatesOnPersistentSourceFailure(t *testing.T) {
	src := &fakeSource{readErr: errors.New("interface went down")}

	session := NewSession(src, nil, alert.NewEngine(), Options{Capacity: 10})
	session.retryBackoff = time.Millisecond
	session.retryMax = 2 * time.Millisecond
	session.maxFailures = 3

	err := session.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interface went down")
}

func TestSessionRecoversFromTransientSourceErrors(t *testing.T) {
	src := &fakeSource{packets: []fakePacket{
		{data: udpPacket(t, 1000, 2000), length: 150},
	}}
	// Fail twice before delivering the packet.
	src.readErr = errors.New("transient")

	session := NewSession(src, nil, alert.NewEngine(), Options{Capacity: 10})
	session.retryBackoff = time.Millisecond
	session.retryMax = 2 * time.Millisecond
	session.maxFailures = 10

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	src.mu.Lock()
	src.readErr = nil
	src.mu.Unlock()

	waitForCount(t, session, 1)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), session.Count())
}
