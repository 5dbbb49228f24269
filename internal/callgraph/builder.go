package callgraph

// Builder accumulates nodes and edges before freezing them into a Graph.
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes map[FunctionID]Node
	edges []CallEdge
	built bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[FunctionID]Node)}
}

// AddFunction registers a function. A later call for the same ID
// replaces the earlier node.
func (b *Builder) AddFunction(n Node) *Builder {
	b.mustBeOpen()
	b.nodes[n.ID] = n
	return b
}

// AddCall registers a call edge. Unknown endpoints are added as bare
// nodes so queries never see dangling identifiers.
func (b *Builder) AddCall(caller, callee FunctionID, kind CallKind) *Builder {
	b.mustBeOpen()
	if _, ok := b.nodes[caller]; !ok {
		b.nodes[caller] = Node{ID: caller}
	}
	if _, ok := b.nodes[callee]; !ok {
		b.nodes[callee] = Node{ID: callee}
	}
	b.edges = append(b.edges, CallEdge{Caller: caller, Callee: callee, Kind: kind})
	return b
}

// Build freezes the builder. The builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	b.mustBeOpen()
	b.built = true

	g := &Graph{
		nodes:   make(map[FunctionID]Node, len(b.nodes)),
		callees: make(map[FunctionID][]FunctionID),
		callers: make(map[FunctionID][]FunctionID),
		edges:   make(map[FunctionID][]CallEdge),
		order:   make([]FunctionID, 0, len(b.nodes)),
	}
	for id, n := range b.nodes {
		g.nodes[id] = n
		g.order = append(g.order, id)
	}
	sortIDs(g.order)

	seenCallee := make(map[CallEdge]bool)
	for _, e := range b.edges {
		g.edges[e.Caller] = append(g.edges[e.Caller], e)
		pair := CallEdge{Caller: e.Caller, Callee: e.Callee}
		if seenCallee[pair] {
			continue
		}
		seenCallee[pair] = true
		g.callees[e.Caller] = append(g.callees[e.Caller], e.Callee)
		g.callers[e.Callee] = append(g.callers[e.Callee], e.Caller)
	}
	for id := range g.callees {
		sortIDs(g.callees[id])
	}
	for id := range g.callers {
		sortIDs(g.callers[id])
	}
	return g
}

func (b *Builder) mustBeOpen() {
	if b.built {
		panic("callgraph: builder used after Build")
	}
}
