package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/emicklei/dot"

	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
)

// SnapshotName is the file name of the snapshot taken after iteration n.
func SnapshotName(iteration int) string {
	return fmt.Sprintf("graph_updated_%d.dot", iteration)
}

// WriteDOT renders g as a Graphviz digraph. Nodes are labelled with their
// asset and edges with their log weight, in insertion order.
func WriteDOT(w io.Writer, g graph.View) error {
	dg := dot.NewGraph(dot.Directed)

	nodes := make(map[graph.NodeID]dot.Node, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes[n.ID] = dg.Node(strconv.Itoa(int(n.ID))).Label(n.Asset.String())
	}
	for _, e := range g.Edges() {
		dg.Edge(nodes[e.From], nodes[e.To], strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}

	_, err := io.WriteString(w, dg.String())
	return err
}

// DOTExporter writes one DOT file per snapshot into a directory.
type DOTExporter struct {
	NopExporter
	dir string
}

// NewDOTExporter creates an exporter writing into dir, created on first use.
func NewDOTExporter(dir string) *DOTExporter {
	return &DOTExporter{dir: dir}
}

// Snapshot writes graph_updated_<iteration>.dot.
func (e *DOTExporter) Snapshot(_ context.Context, iteration int, g graph.View) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return apperror.External(apperror.CodeSnapshotWriteFail, e.dir, err)
	}

	path := filepath.Join(e.dir, SnapshotName(iteration))
	f, err := os.Create(path)
	if err != nil {
		return apperror.External(apperror.CodeSnapshotWriteFail, path, err)
	}
	if err := WriteDOT(f, g); err != nil {
		f.Close()
		return apperror.External(apperror.CodeSnapshotWriteFail, path, err)
	}
	return f.Close()
}
