package search

import "github.com/castkeep/castkeep/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps during search.
type SearchMonitor interface {
	Start(req *Request)
	AfterFilter(itemIDs []string)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(matches []*core.VectorMatch)
	Finish(resp *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Request)                        {}
func (n *noopMonitor) AfterFilter(_ []string)                  {}
func (n *noopMonitor) AfterEmbedding(_ []float32)              {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.VectorMatch) {}
func (n *noopMonitor) Finish(_ *Response)                      {}
