// Package github harvests repositories and owner profiles from the GitHub
// REST API into tabular records.
package github

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/linkextract"
	"github.com/oss-talent/sourcer-cli/internal/model"
)

const defaultAPIURL = "https://api.github.com"

// Getter is the slice of the resilient fetcher the client depends on.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Repo is the subset of the search result payload the harvest keeps.
type Repo struct {
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	OpenIssues  int    `json:"open_issues_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	PushedAt    string `json:"pushed_at"`
	Owner       struct {
		Login   string `json:"login"`
		HTMLURL string `json:"html_url"`
	} `json:"owner"`
}

// Owner is a user or organization profile.
type Owner struct {
	Login           string `json:"login"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Location        string `json:"location"`
	Blog            string `json:"blog"`
	Bio             string `json:"bio"`
	TwitterUsername string `json:"twitter_username"`
}

type searchResponse struct {
	TotalCount int    `json:"total_count"`
	Items      []Repo `json:"items"`
}

// Client searches repositories and resolves owner profiles. Owner lookups
// are memoized per login for the lifetime of the client, since popular
// owners appear on many repos.
type Client struct {
	fetch     Getter
	baseURL   string
	perPage   int
	pageSleep [2]time.Duration
	owners    map[string]Owner
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPerPage sets the search page size.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithPageSleep sets the randomized pause between search pages.
func WithPageSleep(min, max time.Duration) Option {
	return func(c *Client) { c.pageSleep = [2]time.Duration{min, max} }
}

// NewClient creates a Client on top of the given fetcher.
func NewClient(fetch Getter, opts ...Option) *Client {
	c := &Client{
		fetch:     fetch,
		baseURL:   defaultAPIURL,
		perPage:   50,
		pageSleep: [2]time.Duration{200 * time.Millisecond, 800 * time.Millisecond},
		owners:    make(map[string]Owner),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRepos pages through /search/repositories until the results run out
// or max repos are collected.
func (c *Client) SearchRepos(ctx context.Context, query string, max int) ([]Repo, error) {
	var out []Repo
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/search/repositories?q=%s&per_page=%d&page=%d",
			c.baseURL, url.QueryEscape(query), c.perPage, page)

		var resp searchResponse
		if err := c.fetch.GetJSON(ctx, u, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, repo := range resp.Items {
			out = append(out, repo)
			if max > 0 && len(out) >= max {
				return out, nil
			}
		}

		zap.L().Debug("search page fetched",
			zap.Int("page", page), zap.Int("collected", len(out)))
		if err := c.pagePause(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Owner fetches a profile, memoized per login.
func (c *Client) Owner(ctx context.Context, login string) (Owner, error) {
	if login == "" {
		return Owner{}, nil
	}
	if o, ok := c.owners[login]; ok {
		return o, nil
	}

	var o Owner
	if err := c.fetch.GetJSON(ctx, c.baseURL+"/users/"+url.PathEscape(login), &o); err != nil {
		return Owner{}, err
	}
	c.owners[login] = o
	return o, nil
}

func (c *Client) pagePause(ctx context.Context) error {
	min, max := c.pageSleep[0], c.pageSleep[1]
	if max <= 0 {
		return nil
	}
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// CreatedYearInRange reports whether an ISO-8601 creation timestamp falls
// within [start, end]. Unparseable input is out of range.
func CreatedYearInRange(createdAt string, start, end int) bool {
	if createdAt == "" {
		return false
	}
	ts, err := time.Parse("2006-01-02T15:04:05Z", createdAt)
	if err != nil {
		return false
	}
	return ts.Year() >= start && ts.Year() <= end
}

// OwnerFields is the flattened owner enrichment attached to each repo row.
type OwnerFields struct {
	Name       string
	Email      string
	Location   string // raw, geocoded later
	Blog       string
	X          string
	LinkedIn   string
	ExtraLinks string
}

// ExtractOwnerFields derives the owner columns from a profile: normalized
// blog URL, X profile from the twitter handle, first LinkedIn link from
// blog or bio, and any remaining bio URLs joined as extra links.
func ExtractOwnerFields(o Owner) OwnerFields {
	blog := linkextract.NormalizeURL(o.Blog)
	var x string
	if o.TwitterUsername != "" {
		x = linkextract.NormalizeURL("https://twitter.com/" + o.TwitterUsername)
	}
	linkedIn := linkextract.FirstLinkedIn(o.Blog, o.Bio)

	extra := linkextract.URLsFromText(o.Bio)
	filtered := extra[:0]
	for _, u := range extra {
		if u != blog && u != linkedIn && u != x {
			filtered = append(filtered, u)
		}
	}

	var extraLinks string
	for i, u := range filtered {
		if i > 0 {
			extraLinks += "; "
		}
		extraLinks += u
	}

	return OwnerFields{
		Name:       o.Name,
		Email:      o.Email,
		Location:   o.Location,
		Blog:       blog,
		X:          x,
		LinkedIn:   linkedIn,
		ExtraLinks: extraLinks,
	}
}

// HarvestColumns is the output column order for a GitHub harvest.
func HarvestColumns() []string {
	return []string{
		"repo_full_name", "repo_url", "description", "language",
		"stars", "forks", "open_issues",
		"created_at", "updated_at", "pushed_at",
		"owner_login", "owner_url", "owner_name", "owner_location",
		"owner_email", "owner_blog", "owner_x", "owner_linkedin",
		"owner_extra_links",
	}
}

// RecordFor flattens a repo and its owner enrichment into one table record.
func RecordFor(repo Repo, of OwnerFields) model.Record {
	return model.Record{
		"repo_full_name": repo.FullName,
		"repo_url":       repo.HTMLURL,
		"description":    repo.Description,
		"language":       repo.Language,
		"stars":          strconv.Itoa(repo.Stars),
		"forks":          strconv.Itoa(repo.Forks),
		"open_issues":    strconv.Itoa(repo.OpenIssues),
		"created_at":     repo.CreatedAt,
		"updated_at":     repo.UpdatedAt,
		"pushed_at":      repo.PushedAt,

		"owner_login":       repo.Owner.Login,
		"owner_url":         repo.Owner.HTMLURL,
		"owner_name":        of.Name,
		"owner_location":    of.Location,
		"owner_email":       of.Email,
		"owner_blog":        of.Blog,
		"owner_x":           of.X,
		"owner_linkedin":    of.LinkedIn,
		"owner_extra_links": of.ExtraLinks,
	}
}
