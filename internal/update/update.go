package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReleasesURL is the GitHub endpoint for the latest intelwatch release.
const ReleasesURL = "https://api.github.com/repos/Sovereigndwp/mcp-agent-kit-sub000/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker asks a releases endpoint whether a newer build exists.
type Checker struct {
	URL    string
	Client *http.Client
}

// Check returns nil when the current version is the latest one.
func (c Checker) Check(ctx context.Context, currentVersion string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := c.URL
	if endpoint == "" {
		endpoint = ReleasesURL
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking releases: status %d", resp.StatusCode)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")

	if latest == "" || latest == current {
		return nil, nil
	}

	return &Result{LatestVersion: latest, URL: release.HTMLURL}, nil
}
