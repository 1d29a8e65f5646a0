package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

type URLTools struct {
	URL *url.URL
}

func NewURLTools(raw string) (*URLTools, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}

	urlTools := &URLTools{
		URL: u,
	}
	urlTools.normalize()

	return urlTools, nil
}

func (u *URLTools) normalize() {
	u.URL.Fragment = ""
	u.URL.Scheme = strings.ToLower(u.URL.Scheme)
	u.URL.Host = strings.ToLower(u.URL.Host)

	if (u.URL.Scheme == "http" && strings.HasSuffix(u.URL.Host, ":80")) ||
		(u.URL.Scheme == "https" && strings.HasSuffix(u.URL.Host, ":443")) {
		u.URL.Host, _, _ = strings.Cut(u.URL.Host, ":")
	}
}

// Resolve resolves ref against u.URL and returns an absolute URL.
//
// Examples:
//
//	Base: https://www.flipkart.com/search?q=phone
//	Resolve("/acme-phone/p/itm123")  → "https://www.flipkart.com/acme-phone/p/itm123"
//	Resolve("https://croma.com/x")   → "https://croma.com/x"
func (u *URLTools) Resolve(ref string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("couldn't parse reference %s: %w", ref, err)
	}
	return u.URL.ResolveReference(parsed).String(), nil
}

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	DropTrackingParams bool   // remove common tracking params (utm_*, gclid, ref, tag, ...)
	StripTrailingSlash bool   // treat /a and /a/ the same by removing trailing slash (except for root "/")
	DefaultScheme      string // if empty, require scheme in input; otherwise assume this scheme for schemeless URLs
}

// ProductLinkOptions is the policy used for links pasted by users.
var ProductLinkOptions = CanonicalizeOptions{
	DropTrackingParams: true,
	StripTrailingSlash: true,
	DefaultScheme:      "https",
}

// Common tracking params to strip when DropTrackingParams is true.
var defaultTrackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
	"ref": {}, "ref_": {}, "tag": {}, "psc": {}, "pd_rd_r": {}, "pd_rd_w": {}, "pd_rd_wg": {},
	"pf_rd_p": {}, "pf_rd_r": {}, "smid": {}, "linkcode": {}, "th": {},
}

// Errors
var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
)

// Canonicalize returns a deterministic canonical URL string or an error.
// It uses net/url plus path.Clean and sorts query params for determinism.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: ErrEmptyURL}
	}

	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Host == "" {
		return "", &url.Error{Op: "canonicalize", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)

	// Lowercase host and convert IDN -> punycode
	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") || port == "" {
		u.Host = host
	} else {
		u.Host = net.JoinHostPort(host, port)
	}

	// Drop userinfo (credentials)
	u.User = nil

	cleanPath := path.Clean(u.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if opts.StripTrailingSlash && len(cleanPath) > 1 {
		cleanPath = strings.TrimRight(cleanPath, "/")
		if cleanPath == "" {
			cleanPath = "/"
		}
	}
	u.Path = cleanPath
	u.RawPath = ""
	u.Fragment = ""

	q := u.Query()
	if opts.DropTrackingParams {
		for k := range q {
			lower := strings.ToLower(k)
			if _, ok := defaultTrackingParams[lower]; ok || strings.HasPrefix(lower, "utm_") {
				q.Del(k)
			}
		}
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		values := q[k]
		sort.Strings(values)
		for _, v := range values {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()

	return u.String(), nil
}

// asinPattern matches Amazon product ids in /dp/ and /gp/product/ paths.
var asinPattern = regexp.MustCompile(`(?i)/(?:dp|gp/product|gp/aw/d)/([a-z0-9]{10})(?:/|$)`)

// ProductKey returns a stable key for the product a link points at, so
// different links to the same listing share price history.
//
// Amazon links reduce to "amazon:<ASIN>". Anything else is the canonical URL
// without its query string.
func ProductKey(link string) (string, error) {
	canonical, err := Canonicalize(link, ProductLinkOptions)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(canonical)
	if err != nil {
		return "", err
	}
	if strings.Contains(u.Hostname(), "amazon.") {
		if m := asinPattern.FindStringSubmatch(u.Path + "/"); m != nil {
			return "amazon:" + strings.ToUpper(m[1]), nil
		}
	}
	u.RawQuery = ""
	return u.String(), nil
}
