// Package capture abstracts the live packet source. Handles are created
// through Open so the pipeline never depends on a concrete capture
// mechanism; tests inject their own Source.
package capture

import (
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/pcap"
)

// Type selects the capture mechanism.
type Type string

const (
	TypePCAP     Type = "pcap"
	TypeAFPacket Type = "afpacket"
)

// Source yields raw packets from a live interface. ReadPacket blocks up to
// the configured poll timeout; timeout expiry is reported as an error for
// which IsTimeout returns true.
type Source interface {
	ReadPacket() (data []byte, ci gopacket.CaptureInfo, err error)
	Stats() (Stats, error)
	Close() error
}

// Stats reports source-level packet counters.
type Stats struct {
	Received uint64
	Dropped  uint64
}

// Options configures a capture source.
type Options struct {
	Interface   string `mapstructure:"interface"`
	CaptureType string `mapstructure:"capture_type"`
	SnapLen     int    `mapstructure:"snap_len"`
	BufferSize  int    `mapstructure:"buffer_size"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
	Promiscuous bool   `mapstructure:"promiscuous"`
	Filter      string `mapstructure:"filter"`
	FanoutID    uint16 `mapstructure:"fanout_id"`
}

// DefaultOptions returns the options applied when a field is unset.
func DefaultOptions() Options {
	return Options{
		CaptureType: string(TypePCAP),
		SnapLen:     65536,
		BufferSize:  2 * 1024 * 1024,
		TimeoutMS:   500,
		Promiscuous: true,
	}
}

func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.CaptureType == "" {
		o.CaptureType = def.CaptureType
	}
	if o.SnapLen <= 0 {
		o.SnapLen = def.SnapLen
	}
	if o.BufferSize <= 0 {
		o.BufferSize = def.BufferSize
	}
	if o.TimeoutMS <= 0 {
		o.TimeoutMS = def.TimeoutMS
	}
}

// Open creates a capture source for the given options.
func Open(opts Options) (Source, error) {
	opts.applyDefaults()
	if opts.Interface == "" {
		return nil, fmt.Errorf("capture interface is required")
	}
	switch Type(opts.CaptureType) {
	case TypePCAP:
		return openPcap(opts)
	case TypeAFPacket:
		return openAFPacket(opts)
	default:
		return nil, fmt.Errorf("unsupported capture type: %s", opts.CaptureType)
	}
}

// IsTimeout reports whether err only means "no packet arrived within the
// poll timeout", which the capture loop treats as a normal idle tick.
func IsTimeout(err error) bool {
	return errors.Is(err, pcap.NextErrorTimeoutExpired) ||
		errors.Is(err, afpacket.ErrTimeout)
}
