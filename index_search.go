package lance

// GraphSearch is a fluent builder over GraphIndex.Search for callers who
// prefer configuring a query step by step. A GraphSearch is single-use and
// not safe for concurrent use; the index it queries is.
//
// Example:
//
//	results, err := graph.NewSearch().
//	    WithQuery(embedding).
//	    WithK(10).
//	    WithEfSearch(100).
//	    Execute()
type GraphSearch struct {
	index     *GraphIndex
	queries   [][]float32
	k         int
	efSearch  int     // 0 means derive from the index default
	threshold float32 // 0 means no threshold
}

// NewSearch creates a search builder with k=10 and the index's default
// candidate width.
func (g *GraphIndex) NewSearch() *GraphSearch {
	return &GraphSearch{
		index: g,
		k:     10,
	}
}

// WithQuery sets the query vector(s) - supports single or batch queries.
func (s *GraphSearch) WithQuery(queries ...[]float32) *GraphSearch {
	s.queries = queries
	return s
}

// WithK sets the number of results to return per query. Defaults to 10.
func (s *GraphSearch) WithK(k int) *GraphSearch {
	s.k = k
	return s
}

// WithEfSearch sets the layer-0 candidate width for this search.
//
// Larger values improve recall at the cost of latency. If unset, the search
// uses the larger of k and the index's construction-time candidate width.
// An explicit value smaller than k is rejected at Execute time rather than
// silently truncating results.
func (s *GraphSearch) WithEfSearch(efSearch int) *GraphSearch {
	s.efSearch = efSearch
	return s
}

// WithThreshold keeps only results with distance <= threshold (optional).
func (s *GraphSearch) WithThreshold(threshold float32) *GraphSearch {
	s.threshold = threshold
	return s
}

// Execute runs the search and returns results for all queries, concatenated
// in query order, each query's results ascending by distance.
func (s *GraphSearch) Execute() ([]SearchResult, error) {
	if len(s.queries) == 0 {
		return nil, &ConfigError{Field: "query", Reason: "must specify at least one query"}
	}

	efSearch := s.efSearch
	if efSearch == 0 {
		efSearch = max(s.k, s.index.defaultEfSearch)
	}

	var all []SearchResult
	for _, query := range s.queries {
		results, err := s.index.Search(query, s.k, efSearch)
		if err != nil {
			return nil, err
		}

		for _, r := range results {
			if s.threshold > 0 && r.Distance > s.threshold {
				continue
			}
			all = append(all, r)
		}
	}

	return all, nil
}
