package graph

import (
	"sort"

	"github.com/LavaJover/shvark-commission-service/internal/domain"
)

// Index - арена ребер с индексами по источнику и получателю.
// adjacency хранит развернутые хопы и количество ребер, их породивших
type Index struct {
	edges     map[string]*domain.ShaveEdge
	bySource  map[string][]*domain.ShaveEdge
	byTarget  map[string][]*domain.ShaveEdge
	adjacency map[string]map[string]int
}

func NewIndex(edges []*domain.ShaveEdge) *Index {
	ix := &Index{
		edges:     make(map[string]*domain.ShaveEdge, len(edges)),
		bySource:  make(map[string][]*domain.ShaveEdge),
		byTarget:  make(map[string][]*domain.ShaveEdge),
		adjacency: make(map[string]map[string]int),
	}
	for _, edge := range edges {
		ix.add(edge)
	}
	return ix
}

func (ix *Index) add(edge *domain.ShaveEdge) {
	ix.edges[edge.ID] = edge
	ix.bySource[edge.SourceID] = append(ix.bySource[edge.SourceID], edge)
	for _, beneficiary := range edge.Beneficiaries() {
		ix.byTarget[beneficiary] = append(ix.byTarget[beneficiary], edge)
	}
	for _, hop := range edge.Hops() {
		ix.addHop(hop)
	}
}

func (ix *Index) addHop(hop domain.Hop) {
	next, ok := ix.adjacency[hop.From]
	if !ok {
		next = make(map[string]int)
		ix.adjacency[hop.From] = next
	}
	next[hop.To]++
}

func (ix *Index) Len() int {
	return len(ix.edges)
}

func (ix *Index) Edge(edgeID string) (*domain.ShaveEdge, bool) {
	edge, ok := ix.edges[edgeID]
	return edge, ok
}

func (ix *Index) SourcedFrom(userID string) []*domain.ShaveEdge {
	return sortedCopy(ix.bySource[userID])
}

func (ix *Index) Targeting(userID string) []*domain.ShaveEdge {
	return sortedCopy(ix.byTarget[userID])
}

// Reachable - есть ли направленный путь from -> to (итеративный DFS)
func (ix *Index) Reachable(from, to string) bool {
	return reachable(ix.adjacency, from, to)
}

func reachable(adjacency map[string]map[string]int, from, to string) bool {
	if from == to {
		return true
	}
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adjacency[node] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// DetectCycle проверяет, замкнет ли candidate цикл в графе existing.
// Для каждого нового хопа u -> v цикл есть, если u достижим из v с учетом всех новых хопов
func DetectCycle(existing []*domain.ShaveEdge, candidate *domain.ShaveEdge) error {
	adjacency := make(map[string]map[string]int)
	link := func(hop domain.Hop) {
		if adjacency[hop.From] == nil {
			adjacency[hop.From] = make(map[string]int)
		}
		adjacency[hop.From][hop.To]++
	}
	for _, edge := range existing {
		for _, hop := range edge.Hops() {
			link(hop)
		}
	}
	hops := candidate.Hops()
	for _, hop := range hops {
		link(hop)
	}
	for _, hop := range hops {
		if reachable(adjacency, hop.To, hop.From) {
			return domain.ErrCycleDetected
		}
	}
	return nil
}

func sortedCopy(edges []*domain.ShaveEdge) []*domain.ShaveEdge {
	out := make([]*domain.ShaveEdge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
