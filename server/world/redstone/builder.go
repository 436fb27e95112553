package redstone

import "github.com/basaltcore/voxelserver/server/world"

// GraphBuilder assembles a Graph's CSR adjacency arrays from a simpler
// node/edge description, used by graph construction (chunk decoration scan)
// and by tests.
type GraphBuilder struct {
	nodes []Node
	edges map[NodeID][]edge
	next  NodeID
}

type edge struct {
	to  NodeID
	dir Direction
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{edges: make(map[NodeID][]edge)}
}

// AddNode registers a node and returns its id.
func (b *GraphBuilder) AddNode(pos world.BlockPos, kind NodeKind, data uint16) NodeID {
	id := b.next
	b.next++
	b.nodes = append(b.nodes, Node{ID: id, Kind: kind, Data: data, Pos: pos})
	return id
}

// Connect adds a directed edge from a to b in direction dir (the direction
// one would travel from a's position to reach b), and the matching reverse
// edge from b to a.
func (b *GraphBuilder) Connect(a, bID NodeID, dir Direction) {
	b.edges[a] = append(b.edges[a], edge{to: bID, dir: dir})
	b.edges[bID] = append(b.edges[bID], edge{to: a, dir: dir.Opposite()})
}

// Port registers a cross-chunk edge at the chunk boundary.
func (b *GraphBuilder) Port(ports *[]EdgePort, node NodeID, dir Direction, neighbour ChunkID) {
	*ports = append(*ports, EdgePort{Dir: dir, Neighbor: neighbour, Node: node})
}

// Build produces the CSR-encoded Graph.
func (b *GraphBuilder) Build(ports []EdgePort) Graph {
	g := Graph{Palette: b.nodes, Ports: ports}
	g.Offsets = make([]uint32, len(b.nodes))
	var off uint32
	for i, n := range b.nodes {
		g.Offsets[i] = off
		for _, e := range b.edges[n.ID] {
			g.Adjacency = append(g.Adjacency, e.to)
			g.AdjDir = append(g.AdjDir, e.dir)
			off++
		}
	}
	g.prepare()
	return g
}
