package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGithubReposParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/repos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "5" {
			t.Errorf("expected per_page=5, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"hello-world","html_url":"https://github.com/octocat/hello-world","stargazers_count":3}]`))
	}))
	defer srv.Close()

	client := NewGithubClient("")
	client.baseURL = srv.URL

	repos, err := client.Repos(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("repos failed: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "hello-world" || repos[0].Stars != 3 {
		t.Fatalf("unexpected repos: %+v", repos)
	}
}

func TestGithubReposUnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewGithubClient("")
	client.baseURL = srv.URL

	if _, err := client.Repos(context.Background(), "nobody"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
