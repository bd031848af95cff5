package graph

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a serialization of a Document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatGob  Format = "gob"
)

// Extensions lists the file extensions DecodeFile understands.
var Extensions = []string{".json", ".yaml", ".yml", ".gob"}

// Document mirrors the networkx graph dumps produced by osmnx. Both the
// adjacency layout (json_graph.adjacency_data) and the node-link layout
// (json_graph.node_link_data) are accepted; node "x" is the longitude and
// "y" the latitude.
type Document struct {
	Directed   bool                `json:"directed" yaml:"directed"`
	Multigraph bool                `json:"multigraph" yaml:"multigraph"`
	Nodes      []NodeRecord        `json:"nodes" yaml:"nodes"`
	Adjacency  [][]AdjacencyRecord `json:"adjacency,omitempty" yaml:"adjacency,omitempty"`
	Links      []LinkRecord        `json:"links,omitempty" yaml:"links,omitempty"`
}

// NodeRecord is one entry of Document.Nodes.
type NodeRecord struct {
	ID NodeID  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// AdjacencyRecord is one outgoing edge in the adjacency layout. The list at
// Adjacency[i] belongs to Nodes[i].
type AdjacencyRecord struct {
	ID     NodeID   `json:"id" yaml:"id"`
	Key    int      `json:"key" yaml:"key"`
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// LinkRecord is one edge in the node-link layout.
type LinkRecord struct {
	Source NodeID   `json:"source" yaml:"source"`
	Target NodeID   `json:"target" yaml:"target"`
	Key    int      `json:"key" yaml:"key"`
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// Graph builds a Graph from the document.
func (d *Document) Graph() (*Graph, error) {
	if len(d.Adjacency) > 0 && len(d.Adjacency) != len(d.Nodes) {
		return nil, fmt.Errorf("%w: adjacency has %d entries for %d nodes", ErrInvalidGraph, len(d.Adjacency), len(d.Nodes))
	}

	b := NewBuilder()
	for _, n := range d.Nodes {
		b.AddNode(n.ID, n.Y, n.X)
	}
	for i, adj := range d.Adjacency {
		from := d.Nodes[i].ID
		for _, rec := range adj {
			b.AddEdge(from, rec.ID, lengthOrDefault(rec.Length))
		}
	}
	for _, l := range d.Links {
		b.AddEdge(l.Source, l.Target, lengthOrDefault(l.Length))
	}
	return b.Build()
}

// NewDocument converts g into the adjacency layout. Nodes are written in
// ascending id order; parallel edges get increasing keys.
func NewDocument(g *Graph) *Document {
	doc := &Document{
		Directed:   true,
		Multigraph: true,
		Nodes:      make([]NodeRecord, 0, g.NodeCount()),
		Adjacency:  make([][]AdjacencyRecord, 0, g.NodeCount()),
	}
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		doc.Nodes = append(doc.Nodes, NodeRecord{ID: id, X: n.Lon, Y: n.Lat})

		keys := make(map[NodeID]int)
		edges := g.Edges(id)
		adj := make([]AdjacencyRecord, 0, len(edges))
		for _, e := range edges {
			length := e.Length
			adj = append(adj, AdjacencyRecord{ID: e.To, Key: keys[e.To], Length: &length})
			keys[e.To]++
		}
		doc.Adjacency = append(doc.Adjacency, adj)
	}
	return doc
}

// Decode reads a Document in the given format and builds the graph.
func Decode(r io.Reader, format Format) (*Graph, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatGob:
		return decodeGob(r)
	default:
		return nil, fmt.Errorf("unsupported graph format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s graph: %w", format, err)
	}
	return doc.Graph()
}

// Encode writes g in the given format. JSON and YAML use the adjacency
// Document layout.
func Encode(w io.Writer, format Format, g *Graph) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(NewDocument(g))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(NewDocument(g)); err != nil {
			return err
		}
		return enc.Close()
	case FormatGob:
		return encodeGob(w, g)
	default:
		return fmt.Errorf("unsupported graph format %q", format)
	}
}

// gobGraph is the flat layout used for gob files. gob omits zero-valued
// fields, so lengths are stored by value rather than behind a pointer.
type gobGraph struct {
	Nodes []NodeRecord
	Edges []Edge
}

func encodeGob(w io.Writer, g *Graph) error {
	out := gobGraph{Nodes: make([]NodeRecord, 0, g.NodeCount())}
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		out.Nodes = append(out.Nodes, NodeRecord{ID: id, X: n.Lon, Y: n.Lat})
		out.Edges = append(out.Edges, g.Edges(id)...)
	}
	return gob.NewEncoder(w).Encode(&out)
}

func decodeGob(r io.Reader) (*Graph, error) {
	var in gobGraph
	if err := gob.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode %s graph: %w", FormatGob, err)
	}
	b := NewBuilder()
	for _, n := range in.Nodes {
		b.AddNode(n.ID, n.Y, n.X)
	}
	for _, e := range in.Edges {
		b.AddEdge(e.From, e.To, e.Length)
	}
	return b.Build()
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".gob":
		return FormatGob, nil
	default:
		return "", fmt.Errorf("unsupported graph file extension %q", filepath.Ext(path))
	}
}

// DecodeFile loads a graph file, choosing the codec by extension.
func DecodeFile(path string) (*Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open graph file: %w", err)
	}
	defer f.Close()

	g, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func lengthOrDefault(length *float64) float64 {
	if length == nil {
		return DefaultLength
	}
	return *length
}
