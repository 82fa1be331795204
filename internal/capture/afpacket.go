package capture

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
)

// afpacketSource captures via an AF_PACKET v3 ring.
type afpacketSource struct {
	tpacket *afpacket.TPacket
}

func openAFPacket(opts Options) (Source, error) {
	iface, err := net.InterfaceByName(opts.Interface)
	if err != nil {
		return nil, fmt.Errorf("failed to get interface %s: %w", opts.Interface, err)
	}

	frameSize, blockSize, numBlocks, err := computeRingLayout(opts)
	if err != nil {
		return nil, err
	}

	tpacket, err := afpacket.NewTPacket(
		afpacket.OptInterface(iface.Name),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(time.Duration(opts.TimeoutMS)*time.Millisecond),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TPacket: %w", err)
	}

	if opts.FanoutID > 0 {
		if err := tpacket.SetFanout(afpacket.FanoutHashWithDefrag, opts.FanoutID); err != nil {
			tpacket.Close()
			return nil, fmt.Errorf("failed to set fanout: %w", err)
		}
	}

	if opts.Filter != "" {
		prog, err := CompileFilter(opts.Filter)
		if err != nil {
			tpacket.Close()
			return nil, fmt.Errorf("failed to compile filter %q: %w", opts.Filter, err)
		}
		if err := tpacket.SetBPF(prog); err != nil {
			tpacket.Close()
			return nil, fmt.Errorf("failed to set BPF: %w", err)
		}
	}

	return &afpacketSource{tpacket: tpacket}, nil
}

// computeRingLayout sizes the AF_PACKET ring so frames are page-aligned and
// the total allocation stays within the configured buffer size.
func computeRingLayout(opts Options) (frameSize, blockSize, numBlocks int, err error) {
	pageSize := os.Getpagesize()
	if opts.SnapLen < pageSize {
		frameSize = pageSize / (pageSize / opts.SnapLen)
	} else {
		frameSize = (opts.SnapLen/pageSize + 1) * pageSize
	}
	blockSize = frameSize * 128
	numBlocks = opts.BufferSize / blockSize
	if numBlocks < 1 {
		return 0, 0, 0, fmt.Errorf("buffer size %d too small for frame size %d", opts.BufferSize, frameSize)
	}
	return frameSize, blockSize, numBlocks, nil
}

func (s *afpacketSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	return s.tpacket.ReadPacketData()
}

func (s *afpacketSource) Stats() (Stats, error) {
	_, v3, err := s.tpacket.SocketStats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Received: uint64(v3.Packets()),
		Dropped:  uint64(v3.Drops()),
	}, nil
}

func (s *afpacketSource) Close() error {
	s.tpacket.Close()
	return nil
}
