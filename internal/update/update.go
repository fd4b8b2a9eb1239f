// Package update checks GitHub for a newer mottu release.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	DefaultReleasesURL = "https://api.github.com/repos/mottu/mottu-cli/releases/latest"
	CheckTimeout       = 5 * time.Second
)

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	UpdateURL       string `json:"updateUrl,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
}

// Checker queries a releases endpoint. The zero value uses
// DefaultReleasesURL and http.DefaultClient.
type Checker struct {
	URL        string
	HTTPClient *http.Client
}

// Check reports whether a release newer than currentVersion exists.
// It returns nil whenever the answer is unknown, so callers never block on it.
func (c Checker) Check(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}
	release, err := c.latest(ctx)
	if err != nil {
		slog.Debug("update check failed", "error", err)
		return nil
	}

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	current, latest := normalizeVersion(currentVersion), normalizeVersion(release.TagName)
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func (c Checker) latest(ctx context.Context) (*Release, error) {
	url := c.URL
	if url == "" {
		url = DefaultReleasesURL
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "releases endpoint returned " + http.StatusText(e.code) }

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
