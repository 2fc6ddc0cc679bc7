package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oss-talent/sourcer-cli/pkg/geocode"
)

// Report summarizes one enrichment run.
type Report struct {
	Records     int
	Distinct    int
	LiveLookups int
	CacheHits   int
	ByStatus    map[geocode.Status]int
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{ByStatus: make(map[geocode.Status]int)}
}

// Add counts one resolved status.
func (r *Report) Add(status geocode.Status) {
	r.ByStatus[status]++
}

// Summary renders a one-paragraph human summary, statuses in sorted order.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d records, %d distinct locations, %d live lookups, %d cache hits",
		r.Records, r.Distinct, r.LiveLookups, r.CacheHits)

	statuses := make([]string, 0, len(r.ByStatus))
	for s := range r.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(&b, "\n  %-16s %d", s, r.ByStatus[geocode.Status(s)])
	}
	return b.String()
}
