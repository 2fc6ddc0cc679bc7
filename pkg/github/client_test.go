package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-talent/sourcer-cli/internal/fetcher"
)

func testClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		MaxAttempts: 2,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	})
	opts = append([]Option{WithBaseURL(srv.URL), WithPageSleep(0, 0)}, opts...)
	return NewClient(f, opts...)
}

func TestSearchRepos_Paginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "lisp created:2023-01-01..2026-12-31", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, `{"total_count": 3, "items": [
				{"full_name": "a/one", "stargazers_count": 10, "owner": {"login": "a"}},
				{"full_name": "b/two", "stargazers_count": 5, "owner": {"login": "b"}}
			]}`)
		case 2:
			fmt.Fprint(w, `{"total_count": 3, "items": [
				{"full_name": "c/three", "owner": {"login": "c"}}
			]}`)
		default:
			fmt.Fprint(w, `{"total_count": 3, "items": []}`)
		}
	}))
	defer srv.Close()

	c := testClient(t, srv, WithPerPage(2))
	repos, err := c.SearchRepos(context.Background(), "lisp created:2023-01-01..2026-12-31", 0)
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "a/one", repos[0].FullName)
	assert.Equal(t, 10, repos[0].Stars)
	assert.Equal(t, "c/three", repos[2].FullName)
}

func TestSearchRepos_MaxStopsEarly(t *testing.T) {
	var pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pages.Add(1)
		fmt.Fprint(w, `{"items": [
			{"full_name": "a/one", "owner": {"login": "a"}},
			{"full_name": "b/two", "owner": {"login": "b"}}
		]}`)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	repos, err := c.SearchRepos(context.Background(), "lisp", 2)
	require.NoError(t, err)
	assert.Len(t, repos, 2)
	assert.Equal(t, int32(1), pages.Load())
}

func TestOwner_Memoized(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/users/octocat", r.URL.Path)
		fmt.Fprint(w, `{"login": "octocat", "name": "The Octocat", "location": "San Francisco"}`)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	first, err := c.Owner(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "The Octocat", first.Name)

	second, err := c.Owner(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOwner_EmptyLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for empty login")
	}))
	defer srv.Close()

	o, err := testClient(t, srv).Owner(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Owner{}, o)
}

func TestCreatedYearInRange(t *testing.T) {
	assert.True(t, CreatedYearInRange("2024-06-15T12:00:00Z", 2023, 2026))
	assert.True(t, CreatedYearInRange("2023-01-01T00:00:00Z", 2023, 2026))
	assert.False(t, CreatedYearInRange("2022-12-31T23:59:59Z", 2023, 2026))
	assert.False(t, CreatedYearInRange("", 2023, 2026))
	assert.False(t, CreatedYearInRange("not-a-date", 2023, 2026))
}

func TestExtractOwnerFields(t *testing.T) {
	of := ExtractOwnerFields(Owner{
		Name:            "Ada",
		Email:           "ada@example.com",
		Location:        "London, UK",
		Blog:            "ada.dev",
		Bio:             "I write compilers. https://linkedin.com/in/ada and https://ada.dev plus https://papers.example/p1",
		TwitterUsername: "ada",
	})

	assert.Equal(t, "Ada", of.Name)
	assert.Equal(t, "London, UK", of.Location)
	assert.Equal(t, "https://ada.dev", of.Blog)
	assert.Equal(t, "https://twitter.com/ada", of.X)
	assert.Equal(t, "https://linkedin.com/in/ada", of.LinkedIn)
	// Known links are filtered out of the extras.
	assert.Equal(t, "https://papers.example/p1", of.ExtraLinks)
}

func TestRecordFor(t *testing.T) {
	repo := Repo{
		FullName:  "octo/lisp-vm",
		HTMLURL:   "https://github.com/octo/lisp-vm",
		Stars:     42,
		CreatedAt: "2024-01-01T00:00:00Z",
	}
	repo.Owner.Login = "octo"
	repo.Owner.HTMLURL = "https://github.com/octo"

	rec := RecordFor(repo, OwnerFields{Name: "Octo", Location: "Berlin"})
	assert.Equal(t, "octo/lisp-vm", rec.Get("repo_full_name"))
	assert.Equal(t, "42", rec.Get("stars"))
	assert.Equal(t, "octo", rec.Get("owner_login"))
	assert.Equal(t, "Berlin", rec.Get("owner_location"))

	for _, col := range HarvestColumns() {
		_, ok := rec[col]
		assert.True(t, ok, col)
	}
}
