package classify

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)

// NormalizeLink reports whether raw looks like an online link and returns
// it with a scheme. Values without "://" get "https://" prepended. The host
// must consist of letters, digits, dots and hyphens and contain at least one dot.
func NormalizeLink(raw string) (string, bool) {
	link := strings.TrimSpace(raw)
	if link == "" || strings.ContainsAny(link, " \t\r\n") {
		return "", false
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := u.Hostname()
	if host == "" || !hostnameRegex.MatchString(host) {
		return "", false
	}
	if !strings.Contains(strings.Trim(host, "."), ".") {
		return "", false
	}
	return link, true
}

// RegistrableDomain returns the eTLD+1 of a link's host, for example
// "example.co.uk" for "https://login.example.co.uk/path". When the public
// suffix list cannot answer, the bare host is returned.
func RegistrableDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
