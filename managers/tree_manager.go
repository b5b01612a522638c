package managers

import (
	"github.com/bawdo/rowbatch/nodes"
	"github.com/bawdo/rowbatch/plugins"
	"github.com/bawdo/rowbatch/visitors"
)

// treeManager is the shared base for all manager types. It holds the
// transformer pipeline common to Select, Insert, Update, and Delete managers.
type treeManager struct {
	transformers plugins.Pipeline
}

// addTransformer appends a transformer plugin to the pipeline.
func (tm *treeManager) addTransformer(t plugins.Transformer) {
	tm.transformers = append(tm.transformers, t)
}

// Transformers returns the registered transformer pipeline.
func (tm *treeManager) Transformers() []plugins.Transformer {
	return tm.transformers
}

// toSQL renders stmt with r and, unless r inlines every value, binds it
// with a BindContext of the same family.
func toSQL(r *visitors.RenderContext, stmt nodes.Node) (string, []any, error) {
	sql, err := r.Render(stmt)
	if err != nil {
		return "", nil, err
	}
	if r.ParamType() == visitors.Inlined {
		return sql, nil, nil
	}
	args, err := visitors.NewBindContext(r.Family()).Bind(stmt)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

func cloneNodes(src []nodes.Node) []nodes.Node {
	if src == nil {
		return nil
	}
	out := make([]nodes.Node, len(src))
	copy(out, src)
	return out
}

func cloneAssignments(src []*nodes.AssignmentNode) []*nodes.AssignmentNode {
	if src == nil {
		return nil
	}
	out := make([]*nodes.AssignmentNode, len(src))
	copy(out, src)
	return out
}
