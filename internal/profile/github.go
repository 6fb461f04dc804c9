package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GithubClient fetches a user's most recent public repositories for the
// profile page widget.
type GithubClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewGithubClient(token string) *GithubClient {
	return &GithubClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
	}
}

// Repo is the subset of the Github repository payload the client renders.
type Repo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}

// Repos returns up to five repositories for username. Any non-200 answer,
// including an unknown username, comes back as an error.
func (g *GithubClient) Repos(ctx context.Context, username string) ([]Repo, error) {
	url := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc", g.baseURL, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "devconnect")
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github responded with status %d", resp.StatusCode)
	}

	var repos []Repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, err
	}
	return repos, nil
}
