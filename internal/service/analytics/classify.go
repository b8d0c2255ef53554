package analytics

import (
	"net/url"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
)

const (
	ReferrerDirect   = "direct"
	ReferrerInternal = "internal"
	maxPathLen       = 200
)

var botMarkers = []string{"bot", "crawler", "spider", "slurp", "headless"}

// IsBot reports whether the user agent belongs to an automated client.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// DeviceFromUserAgent classifies a browser user agent. Tablets are checked first
// because tablet agents also carry mobile markers.
func DeviceFromUserAgent(userAgent string) domain.Device {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad"),
		strings.Contains(ua, "tablet"),
		strings.Contains(ua, "kindle"),
		strings.Contains(ua, "silk/"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return domain.DeviceTablet
	case strings.Contains(ua, "mobi"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "ipod"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "windows phone"),
		strings.Contains(ua, "blackberry"),
		strings.Contains(ua, "opera mini"):
		return domain.DeviceMobile
	default:
		return domain.DeviceDesktop
	}
}

// NormalizeReferrer reduces a referrer to its host without "www.".
// No referrer is "direct" and the site's own host is "internal".
func NormalizeReferrer(raw, siteHost string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ReferrerDirect
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ReferrerDirect
	}
	host := stripWWW(strings.ToLower(u.Hostname()))
	if host == "" {
		return ReferrerDirect
	}
	if site := stripWWW(strings.ToLower(strings.TrimSpace(siteHost))); site != "" && host == site {
		return ReferrerInternal
	}
	return host
}

func stripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// NormalizePath keeps only the path of a page URL: leading slash, no query or
// fragment, no trailing slash except the root, at most 200 characters.
func NormalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			raw = u.Path
		}
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	for strings.Contains(raw, "//") {
		raw = strings.ReplaceAll(raw, "//", "/")
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if r := []rune(raw); len(r) > maxPathLen {
		raw = string(r[:maxPathLen])
	}
	if raw = strings.TrimRight(raw, "/"); raw == "" {
		raw = "/"
	}
	return raw
}
