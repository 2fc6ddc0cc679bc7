// Package huggingface harvests model and dataset listings from the Hugging
// Face Hub API into tabular records.
package huggingface

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/linkextract"
	"github.com/oss-talent/sourcer-cli/internal/model"
	"github.com/oss-talent/sourcer-cli/internal/resilience"
)

const defaultBaseURL = "https://huggingface.co"

// AssetKind selects which hub listing to search.
type AssetKind string

const (
	KindModels   AssetKind = "models"
	KindDatasets AssetKind = "datasets"
)

// Getter is the slice of the resilient fetcher the client depends on.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Asset is one search hit from the models or datasets listing.
type Asset struct {
	ID           string   `json:"id"` // "namespace/name" or bare "name"
	Author       string   `json:"author"`
	LastModified string   `json:"lastModified"`
	CreatedAt    string   `json:"createdAt"`
	Likes        int      `json:"likes"`
	Downloads    int      `json:"downloads"`
	PipelineTag  string   `json:"pipeline_tag"`
	Tags         []string `json:"tags"`
}

// Namespace returns the author namespace of the asset: the explicit author
// field when set, otherwise the part of the ID before the slash.
func (a Asset) Namespace() string {
	if a.Author != "" {
		return a.Author
	}
	if i := strings.IndexByte(a.ID, '/'); i > 0 {
		return a.ID[:i]
	}
	return ""
}

// Author is a hub user or organization profile. The hub is inconsistent
// about the display-name field across the two endpoints.
type Author struct {
	Name      string `json:"name"`
	Fullname  string `json:"fullname"`
	FullName2 string `json:"fullName"`
	Details   string `json:"details"`
}

// DisplayName returns the first non-empty display-name variant.
func (a Author) DisplayName() string {
	for _, s := range []string{a.Name, a.Fullname, a.FullName2} {
		if v := strings.TrimSpace(s); v != "" {
			return v
		}
	}
	return ""
}

// AuthorType classifies a namespace.
type AuthorType string

const (
	AuthorUser    AuthorType = "user"
	AuthorOrg     AuthorType = "org"
	AuthorUnknown AuthorType = "unknown"
)

// Query plans. Core lists target the retrieval niche directly; extended
// lists widen to adjacent techniques and stacks.
var (
	ModelQueriesCore = []string{
		"reranker", "ranker", "retrieval", "cross-encoder", "bi-encoder",
		"sentence-transformers", "text-embedding",
	}
	ModelQueriesExtended = []string{
		"dense retrieval", "dual encoder", "colbert", "splade", "contriever", "dpr",
		"semantic search", "semantic similarity", "matryoshka", "binary embedding", "late interaction",
		"recommender", "recommendation", "collaborative filtering", "content-based filtering",
		"user embedding", "item embedding",
		"NLP", "text classification", "named entity recognition", "question answering",
		"fine-tuned", "distillation",
		"vector search", "similarity search", "approximate nearest neighbor", "faiss", "milvus",
	}
	DatasetQueriesCore = []string{"retrieval", "ranking", "recommendation"}
	DatasetQueriesExtended = []string{
		"qrels", "hard negatives", "triplets", "query passage", "query-document pairs",
		"pairwise ranking", "user-item", "click-through", "implicit feedback",
		"BEIR", "MTEB", "MS MARCO",
	}
)

// Queries returns the query plan for an asset kind.
func Queries(kind AssetKind, extended bool) []string {
	var core, ext []string
	switch kind {
	case KindDatasets:
		core, ext = DatasetQueriesCore, DatasetQueriesExtended
	default:
		core, ext = ModelQueriesCore, ModelQueriesExtended
	}
	out := append([]string(nil), core...)
	if extended {
		out = append(out, ext...)
	}
	return out
}

// Client searches hub listings and resolves author namespaces. Author
// lookups are memoized per namespace.
type Client struct {
	fetch         Getter
	baseURL       string
	limitPerQuery int
	authors       map[string]Author
	authorTypes   map[string]AuthorType
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithLimitPerQuery caps the hits requested per search query.
func WithLimitPerQuery(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limitPerQuery = n
		}
	}
}

// NewClient creates a Client on top of the given fetcher.
func NewClient(fetch Getter, opts ...Option) *Client {
	c := &Client{
		fetch:         fetch,
		baseURL:       defaultBaseURL,
		limitPerQuery: 200,
		authors:       make(map[string]Author),
		authorTypes:   make(map[string]AuthorType),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one listing query.
func (c *Client) Search(ctx context.Context, kind AssetKind, query string) ([]Asset, error) {
	u := fmt.Sprintf("%s/api/%s?search=%s&limit=%d&full=true",
		c.baseURL, kind, url.QueryEscape(strings.TrimSpace(query)), c.limitPerQuery)

	var assets []Asset
	if err := c.fetch.GetJSON(ctx, u, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// SearchAll runs the whole query plan, deduplicates hits by ID, filters by
// the lastModified year window (when startYear > 0), and stops at maxTotal.
func (c *Client) SearchAll(ctx context.Context, kind AssetKind, queries []string, startYear, endYear, maxTotal int) ([]Asset, error) {
	seen := make(map[string]struct{})
	var out []Asset
	for _, q := range queries {
		assets, err := c.Search(ctx, kind, q)
		if err != nil {
			return nil, err
		}
		for _, a := range assets {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			if startYear > 0 && !YearInRange(a.LastModified, startYear, endYear) {
				continue
			}
			out = append(out, a)
			if maxTotal > 0 && len(out) >= maxTotal {
				return out, nil
			}
		}
		zap.L().Debug("query done",
			zap.String("kind", string(kind)),
			zap.String("query", q),
			zap.Int("collected", len(out)),
		)
	}
	return out, nil
}

// Author resolves a namespace, trying the user endpoint first and the
// organization endpoint on 404. An unknown namespace is not an error.
func (c *Client) Author(ctx context.Context, namespace string) (Author, AuthorType, error) {
	if namespace == "" {
		return Author{}, AuthorUnknown, nil
	}
	if a, ok := c.authors[namespace]; ok {
		return a, c.authorTypes[namespace], nil
	}

	var a Author
	err := c.fetch.GetJSON(ctx, c.baseURL+"/api/users/"+url.PathEscape(namespace), &a)
	switch {
	case err == nil:
		c.authors[namespace] = a
		c.authorTypes[namespace] = AuthorUser
		return a, AuthorUser, nil
	case !resilience.IsNotFound(err):
		return Author{}, AuthorUnknown, err
	}

	err = c.fetch.GetJSON(ctx, c.baseURL+"/api/organizations/"+url.PathEscape(namespace), &a)
	switch {
	case err == nil:
		c.authors[namespace] = a
		c.authorTypes[namespace] = AuthorOrg
		return a, AuthorOrg, nil
	case resilience.IsNotFound(err):
		c.authors[namespace] = Author{}
		c.authorTypes[namespace] = AuthorUnknown
		return Author{}, AuthorUnknown, nil
	default:
		return Author{}, AuthorUnknown, err
	}
}

// YearInRange reports whether an ISO-8601 timestamp (with or without
// fractional seconds) falls within [start, end]. Unparseable input is out
// of range.
func YearInRange(ts string, start, end int) bool {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
	} {
		if d, err := time.Parse(layout, ts); err == nil {
			return d.Year() >= start && d.Year() <= end
		}
	}
	return false
}

// AssetURL returns the hub page for an asset.
func (c *Client) AssetURL(kind AssetKind, id string) string {
	if kind == KindDatasets {
		return c.baseURL + "/datasets/" + id
	}
	return c.baseURL + "/" + id
}

// HarvestColumns is the output column order for a hub harvest.
func HarvestColumns() []string {
	return []string{
		"asset_kind", "asset_id", "asset_url",
		"pipeline_tag", "likes", "downloads",
		"created_at", "last_modified",
		"owner_login", "owner_type", "owner_name", "owner_location",
		"owner_linkedin", "owner_extra_links",
	}
}

// RecordFor flattens an asset and its resolved author into one table
// record. Author bios carry the only location and link signal the hub
// exposes, so both come out of free-text extraction.
func RecordFor(c *Client, kind AssetKind, a Asset, author Author, authorType AuthorType) model.Record {
	links := linkextract.URLsFromText(author.Details)
	linkedIn := linkextract.FirstLinkedIn(author.Details)
	filtered := links[:0]
	for _, u := range links {
		if u != linkedIn {
			filtered = append(filtered, u)
		}
	}

	return model.Record{
		"asset_kind":    string(kind),
		"asset_id":      a.ID,
		"asset_url":     c.AssetURL(kind, a.ID),
		"pipeline_tag":  a.PipelineTag,
		"likes":         strconv.Itoa(a.Likes),
		"downloads":     strconv.Itoa(a.Downloads),
		"created_at":    a.CreatedAt,
		"last_modified": a.LastModified,

		"owner_login":       a.Namespace(),
		"owner_type":        string(authorType),
		"owner_name":        author.DisplayName(),
		"owner_location":    "", // the hub has no structured location field
		"owner_linkedin":    linkedIn,
		"owner_extra_links": strings.Join(filtered, "; "),
	}
}
