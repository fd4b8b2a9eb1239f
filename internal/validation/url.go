// Package validation checks user input before it reaches the Mottu API.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// MaxURLLength is the longest base URL accepted.
const MaxURLLength = 2048

var cloudMetadataHosts = []string{
	"169.254.169.254",
	"metadata.google.internal",
	"instance-data",
	"fd00:ec2::254",
}

// ValidateBaseURL checks a Mottu API base URL. Local and private hosts are
// accepted since the backend commonly runs on a developer machine; cloud
// metadata endpoints never are.
func ValidateBaseURL(rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("base URL must not contain a query or fragment")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if ip := net.ParseIP(hostname); ip != nil && ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	return nil
}

func isCloudMetadata(hostname string) bool {
	lower := strings.ToLower(hostname)
	for _, h := range cloudMetadataHosts {
		if lower == h {
			return true
		}
	}
	return strings.HasSuffix(lower, ".metadata.google.internal")
}
