package feedmill

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRejectedURL signals that a candidate link was dropped during
// normalization. Rejection is a filtering outcome, not a failure; callers
// drop the candidate and continue with the batch.
var ErrRejectedURL = errors.New("rejected url")

// ErrSelfReferentialURL marks a link that normalizes to the source's own
// base URL. Such links are navigation, not distinct articles.
var ErrSelfReferentialURL = fmt.Errorf("%w: self-referential link", ErrRejectedURL)

// trackingParamPrefixes are query parameter names stripped during
// normalization. Matching is by prefix, so utm_source, utm_campaign and
// friends all fall under "utm_".
var trackingParamPrefixes = []string{
	"utm_", "ref_", "fbclid", "gclid", "msclkid", "cmp", "campaign", "source",
}

// ResolveURL converts a possibly relative, protocol-relative or
// tracking-laden URL into a canonical absolute URL given a base. The result
// uses https, carries no tracking parameters and has no trailing slash, so
// resolving an already-resolved URL is a no-op.
func ResolveURL(raw, base string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", fmt.Errorf("%w: empty or fragment-only link", ErrRejectedURL)
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return "", fmt.Errorf("%w: unparseable base %q", ErrRejectedURL, base)
	}

	var abs string
	switch {
	case strings.HasPrefix(raw, "//"):
		abs = baseURL.Scheme + ":" + raw
	case strings.HasPrefix(raw, "/"):
		abs = baseURL.Scheme + "://" + baseURL.Host + raw
	default:
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: unparseable link %q", ErrRejectedURL, raw)
		}
		if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
			return "", fmt.Errorf("%w: scheme %q", ErrRejectedURL, parsed.Scheme)
		}
		if parsed.IsAbs() {
			abs = raw
		} else {
			// Other relative paths resolve against a
			// trailing-slash-normalized base.
			slashed := base
			if !strings.HasSuffix(slashed, "/") {
				slashed += "/"
			}
			slashedURL, err := url.Parse(slashed)
			if err != nil {
				return "", fmt.Errorf("%w: unparseable base %q", ErrRejectedURL, base)
			}
			abs = slashedURL.ResolveReference(parsed).String()
		}
	}

	normalized, err := normalizeURL(abs)
	if err != nil {
		return "", err
	}

	if normalizedBase, err := normalizeURL(base); err == nil && normalized == normalizedBase {
		return "", ErrSelfReferentialURL
	}

	return normalized, nil
}

// normalizeURL strips tracking parameters, upgrades http to https, drops
// the fragment and removes the trailing slash.
func normalizeURL(s string) (string, error) {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: unparseable url %q", ErrRejectedURL, s)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", ErrRejectedURL, u.Scheme)
	}
	u.Scheme = "https"

	q := u.Query()
	for key := range q {
		lower := strings.ToLower(key)
		for _, prefix := range trackingParamPrefixes {
			if strings.HasPrefix(lower, prefix) {
				q.Del(key)
				break
			}
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}
