package capture

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// pcapSource captures via libpcap.
type pcapSource struct {
	handle *pcap.Handle
}

func openPcap(opts Options) (Source, error) {
	handle, err := pcap.OpenLive(
		opts.Interface,
		int32(opts.SnapLen),
		opts.Promiscuous,
		time.Duration(opts.TimeoutMS)*time.Millisecond,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.Interface, err)
	}
	if opts.Filter != "" {
		if err := handle.SetBPFFilter(opts.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("failed to set BPF filter %q: %w", opts.Filter, err)
		}
	}
	return &pcapSource{handle: handle}, nil
}

func (s *pcapSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	return s.handle.ReadPacketData()
}

func (s *pcapSource) Stats() (Stats, error) {
	st, err := s.handle.Stats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Received: uint64(st.PacketsReceived),
		Dropped:  uint64(st.PacketsDropped + st.PacketsIfDropped),
	}, nil
}

func (s *pcapSource) Close() error {
	s.handle.Close()
	return nil
}

// Interfaces lists the capture-capable network interfaces on this host.
func Interfaces() ([]pcap.Interface, error) {
	return pcap.FindAllDevs()
}
