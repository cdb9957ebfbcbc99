package gitgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalGraph encodes g as indented JSON.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes g as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// UnmarshalGraph decodes a graph written by [WriteGraph] and checks that every
// index it carries is in range.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := g.reindex(); err != nil {
		return nil, err
	}
	return &g, nil
}

// ReadGraph decodes a graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalGraph(data)
}

func (g *Graph) reindex() error {
	nb := len(g.AllBranches)
	g.Indices = make(map[string]int, len(g.Commits))
	for i := range g.Commits {
		c := &g.Commits[i]
		if _, dup := g.Indices[c.OID]; dup {
			return fmt.Errorf("duplicate commit %s", c.OID)
		}
		g.Indices[c.OID] = i
		if c.Trace < Unset || c.Trace >= nb {
			return fmt.Errorf("commit %s: trace %d out of range", c.ShortID(), c.Trace)
		}
	}
	for _, list := range [][]int{g.Branches, g.Tags} {
		for _, b := range list {
			if b < 0 || b >= nb {
				return fmt.Errorf("branch index %d out of range", b)
			}
		}
	}
	return nil
}
