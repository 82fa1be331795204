// Package models defines the data types shared across the capture pipeline.
package models

import "time"

// Transport holds the transport-layer fields of a record. Flags is only
// populated for TCP; for UDP it stays empty.
type Transport struct {
	SrcPort uint16 `json:"src_port"`
	DstPort uint16 `json:"dst_port"`
	Flags   string `json:"flags,omitempty"`
}

// Location is a geographic coordinate attached by best-effort enrichment.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PacketRecord is one observation of a captured packet. A record is only
// built for packets that carry a network-layer header, and it is immutable
// once it has been handed to the store.
type PacketRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	Elapsed   time.Duration `json:"time_relative"`
	SrcIP     string        `json:"source"`
	DstIP     string        `json:"destination"`
	Protocol  string        `json:"protocol"`
	Size      int           `json:"size"`

	Transport *Transport `json:"transport,omitempty"`
	Geo       *Location  `json:"geo,omitempty"`
}
