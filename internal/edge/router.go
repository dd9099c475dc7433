// Package edge decides at the CloudFront edge whether a request is served
// from static storage or forwarded to the dynamic origin.
package edge

import "strings"

// Decision is the outcome of routing one URI.
type Decision struct {
	// URI is the URI to send to the origin: the normalized form for static
	// hits, the original URI otherwise.
	URI    string
	Static bool
}

// NormalizeURI maps directory-style URIs onto their index document:
// "/about" becomes "/about/index.html" and "/" becomes "/index.html". URIs
// with a '.' anywhere are left alone.
func NormalizeURI(uri string) string {
	if !strings.Contains(uri, ".") && !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	if strings.HasSuffix(uri, "/") {
		uri += "index.html"
	}
	return uri
}

// Route looks up the normalized form of uri in paths.
func Route(uri string, paths *StaticPathSet) Decision {
	normalized := NormalizeURI(uri)
	if paths.Contains(normalized) {
		return Decision{URI: normalized, Static: true}
	}
	return Decision{URI: uri}
}
