package models

import (
	"time"
)

// Channel identifies an external booking platform.
type Channel string

// Supported channels.
const (
	ChannelAirbnb  Channel = "airbnb"
	ChannelVrbo    Channel = "vrbo"
	ChannelBooking Channel = "booking"
	ChannelDirect  Channel = "direct"
	ChannelOther   Channel = "other"
)

// ValidChannel reports whether c is a known channel type.
func ValidChannel(c Channel) bool {
	switch c {
	case ChannelAirbnb, ChannelVrbo, ChannelBooking, ChannelDirect, ChannelOther:
		return true
	}
	return false
}

// Capabilities declares what a channel connection can do. Only
// CalendarRead is exercised by the sync core; the rest are carried for
// configuration completeness.
type Capabilities struct {
	CalendarRead  bool `json:"calendar_read"`
	CalendarWrite bool `json:"calendar_write"`
	Messaging     bool `json:"messaging"`
	Pricing       bool `json:"pricing"`
	Payouts       bool `json:"payouts"`
}

// ChannelConnection links a property to one external calendar feed.
// A property has at most one connection per channel type. FeedURL may be
// empty, in which case no automated sync is possible for the connection.
type ChannelConnection struct {
	ID                string       `json:"id"`
	PropertyID        string       `json:"property_id"`
	Channel           Channel      `json:"channel"`
	FeedURL           string       `json:"feed_url,omitempty"`
	ExternalListingID *string      `json:"external_listing_id,omitempty"`
	Capabilities      Capabilities `json:"capabilities"`
	LastSyncAt        *time.Time   `json:"last_sync_at,omitempty"`
	LastSyncError     *string      `json:"last_sync_error,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
