// Package visitor defines the core entities for browsing activity tracking.
package visitor

import "time"

// DeviceType classifies the visitor's device form factor.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
)

// ContactChannel identifies an outbound-contact intent channel.
type ContactChannel string

const (
	ChannelEmail    ContactChannel = "email"
	ChannelPhone    ContactChannel = "phone"
	ChannelWhatsApp ContactChannel = "whatsapp"
)

// Visitor is the authoritative record for one client-persisted fingerprint.
// It is created on the first observed event and merged on every subsequent
// one; it is never replaced or deleted.
type Visitor struct {
	Fingerprint    string     `json:"fingerprint"`
	IPAddress      string     `json:"ipAddress,omitempty"`
	DeviceType     DeviceType `json:"deviceType,omitempty"`
	Browser        string     `json:"browser,omitempty"`
	BrowserVersion string     `json:"browserVersion,omitempty"`
	OS             string     `json:"os,omitempty"`
	ScreenWidth    int        `json:"screenWidth,omitempty"`
	ScreenHeight   int        `json:"screenHeight,omitempty"`
	Language       string     `json:"language,omitempty"`
	Referrer       string     `json:"referrer,omitempty"`
	FirstSeen      time.Time  `json:"firstSeen"`
	LastSeen       time.Time  `json:"lastSeen"`
	VisitCount     int        `json:"visitCount"`
	HasChatted     bool       `json:"hasChatted"`
}

// Attributes carries the client-observed fields of a visit event. Empty
// fields are ignored during a merge so a sparse event never erases what a
// richer one recorded.
type Attributes struct {
	IPAddress      string     `json:"ipAddress,omitempty"`
	DeviceType     DeviceType `json:"deviceType,omitempty"`
	Browser        string     `json:"browser,omitempty"`
	BrowserVersion string     `json:"browserVersion,omitempty"`
	OS             string     `json:"os,omitempty"`
	ScreenWidth    int        `json:"screenWidth,omitempty"`
	ScreenHeight   int        `json:"screenHeight,omitempty"`
	Language       string     `json:"language,omitempty"`
	Referrer       string     `json:"referrer,omitempty"`
}

// Session is one contiguous browsing visit. At most one session per visitor
// is active at any moment; Duration is set exactly when EndedAt is set and
// holds EndedAt minus StartedAt in seconds.
type Session struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Duration    int64      `json:"duration,omitempty"`
	Active      bool       `json:"active"`
}

// PageView is an append-only browsing event. Never mutated or deleted.
type PageView struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	SessionID   string    `json:"sessionId,omitempty"`
	Path        string    `json:"path"`
	Title       string    `json:"title,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ContactClick records an outbound-contact intent (mailto/tel/WhatsApp link
// click). Value holds the raw link target that was clicked; Page the path it
// was clicked from. Append-only.
type ContactClick struct {
	ID          string         `json:"id"`
	Fingerprint string         `json:"fingerprint"`
	Channel     ContactChannel `json:"channel"`
	Value       string         `json:"value,omitempty"`
	Page        string         `json:"page,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Merge overwrites the visitor's observed attributes with any non-zero field
// of attrs. Identity, counters and first-seen are never touched here.
func (v *Visitor) Merge(attrs Attributes) {
	if attrs.IPAddress != "" {
		v.IPAddress = attrs.IPAddress
	}
	if attrs.DeviceType != "" {
		v.DeviceType = attrs.DeviceType
	}
	if attrs.Browser != "" {
		v.Browser = attrs.Browser
	}
	if attrs.BrowserVersion != "" {
		v.BrowserVersion = attrs.BrowserVersion
	}
	if attrs.OS != "" {
		v.OS = attrs.OS
	}
	if attrs.ScreenWidth > 0 {
		v.ScreenWidth = attrs.ScreenWidth
	}
	if attrs.ScreenHeight > 0 {
		v.ScreenHeight = attrs.ScreenHeight
	}
	if attrs.Language != "" {
		v.Language = attrs.Language
	}
	if attrs.Referrer != "" {
		v.Referrer = attrs.Referrer
	}
}
