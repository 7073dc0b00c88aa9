package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Network depth bounds.
const (
	DefaultDepth = 2
	MaxDepth     = 3
)

// Node is a paper in a citation network.
type Node struct {
	ID      uuid.UUID
	Title   string
	Year    *int
	Authors string
}

// Edge points from the citing paper to the cited paper.
type Edge struct {
	Source uuid.UUID
	Target uuid.UUID
}

// Network is the subgraph around a focal paper. Nodes[0] is the focal paper.
type Network struct {
	Nodes []Node
	Edges []Edge
}

// EdgeLoader returns every citation edge with an end in frontier. It is
// called once per BFS level, plus once over the last frontier when depth
// stops the search, and must return edges in a deterministic order.
type EdgeLoader func(ctx context.Context, frontier []uuid.UUID) ([]domain.CitationEdge, error)

// NormalizeDepth rejects depths below 1 and caps the rest at MaxDepth.
func NormalizeDepth(depth int) (int, error) {
	if depth < 1 {
		return 0, domain.FieldErrors{"depth": "must be at least 1"}
	}
	if depth > MaxDepth {
		return MaxDepth, nil
	}
	return depth, nil
}

// Traversal is the paper ids and edges reached from a focal paper.
type Traversal struct {
	// NodeIDs lists the focal paper first, then papers in discovery order.
	NodeIDs []uuid.UUID
	Edges   []Edge
}

// BuildNetwork runs a breadth-first search from focal in both citation
// directions for up to depth levels. Each paper is expanded at most once
// and each (source, target) pair appears once, so cycles terminate.
// Edges between papers first reached at the last level are kept too.
func BuildNetwork(ctx context.Context, focal uuid.UUID, depth int, load EdgeLoader) (*Traversal, error) {
	depth, err := NormalizeDepth(depth)
	if err != nil {
		return nil, err
	}

	visited := map[uuid.UUID]struct{}{focal: {}}
	seenEdges := make(map[Edge]struct{})
	result := &Traversal{NodeIDs: []uuid.UUID{focal}}

	frontier := []uuid.UUID{focal}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		edges, err := load(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("failed to load citation edges at level %d: %w", level+1, err)
		}

		var next []uuid.UUID
		for _, ce := range edges {
			e := Edge{Source: ce.Source, Target: ce.Target}
			if _, ok := seenEdges[e]; !ok {
				seenEdges[e] = struct{}{}
				result.Edges = append(result.Edges, e)
			}

			for _, id := range [2]uuid.UUID{e.Source, e.Target} {
				if _, ok := visited[id]; ok {
					continue
				}
				visited[id] = struct{}{}
				result.NodeIDs = append(result.NodeIDs, id)
				next = append(next, id)
			}
		}
		frontier = next
	}

	if len(frontier) == 0 {
		return result, nil
	}
	edges, err := load(ctx, frontier)
	if err != nil {
		return nil, fmt.Errorf("failed to load citation edges between last-level papers: %w", err)
	}
	for _, ce := range edges {
		e := Edge{Source: ce.Source, Target: ce.Target}
		_, srcIn := visited[e.Source]
		_, dstIn := visited[e.Target]
		if _, ok := seenEdges[e]; ok || !srcIn || !dstIn {
			continue
		}
		seenEdges[e] = struct{}{}
		result.Edges = append(result.Edges, e)
	}
	return result, nil
}

// Assemble turns a traversal into a Network using papers keyed by id.
// Papers missing from the map, and the edges touching them, are dropped.
func Assemble(t *Traversal, papers map[uuid.UUID]*domain.Paper) *Network {
	network := &Network{
		Nodes: make([]Node, 0, len(t.NodeIDs)),
		Edges: make([]Edge, 0, len(t.Edges)),
	}

	for _, id := range t.NodeIDs {
		p, ok := papers[id]
		if !ok {
			continue
		}
		network.Nodes = append(network.Nodes, Node{ID: p.ID, Title: p.Title, Year: p.Year, Authors: p.Authors})
	}
	for _, e := range t.Edges {
		if papers[e.Source] == nil || papers[e.Target] == nil {
			continue
		}
		network.Edges = append(network.Edges, e)
	}

	return network
}
