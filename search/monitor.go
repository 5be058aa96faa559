package search

import (
	"github.com/poiesic/lexcorpus/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(ids []string)
	SemanticHit(result *core.SearchResult)
	VerbatimHit(result *core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterSemanticSearch(_ []string)   {}
func (n *noopMonitor) SemanticHit(_ *core.SearchResult) {}
func (n *noopMonitor) VerbatimHit(_ *core.SearchResult) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)    {}
