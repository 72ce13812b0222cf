package netgraph

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geokit/pkg/geodata"
)

const vertexColumn = "vertex"

// BindOption configures BindCommunities.
type BindOption func(*bindConfig)

type bindConfig struct {
	column string
}

// WithCommunityColumn overrides the output column name ("community" by
// default).
func WithCommunityColumn(name string) BindOption {
	return func(c *bindConfig) { c.column = name }
}

// BindCommunities merges community labels into a geometry collection, keyed
// by the nameKey attribute against vertex names. Geometries whose key names
// no vertex receive a null label; spatial entities outside the network are
// expected, not an error. Rebinding replaces the label column rather than
// duplicating it.
func BindCommunities(c *geodata.Collection, assignment Assignment, nameKey string, opts ...BindOption) (*geodata.Collection, error) {
	cfg := bindConfig{column: "community"}
	for _, opt := range opts {
		opt(&cfg)
	}

	names := make([]string, 0, len(assignment))
	for name := range assignment {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([]geodata.Row, 0, len(names))
	for _, name := range names {
		rows = append(rows, geodata.Row{
			vertexColumn: name,
			cfg.column:   assignment[name],
		})
	}
	table, err := geodata.NewTable([]string{vertexColumn, cfg.column}, rows)
	if err != nil {
		return nil, eris.Wrap(err, "netgraph: assignment table")
	}

	// Drop any previous binding so a rebind is indistinguishable from a
	// first bind.
	if attrs := c.Attrs(); attrs != nil && attrs.HasColumn(cfg.column) && nameKey != cfg.column {
		c, err = c.WithAttrs(attrs.WithoutColumn(cfg.column))
		if err != nil {
			return nil, eris.Wrap(err, "netgraph: drop stale community column")
		}
	}

	bound, err := geodata.AttributeJoin(c, table, nameKey, vertexColumn, geodata.JoinLeft)
	if err != nil {
		return nil, eris.Wrap(err, "netgraph: bind communities")
	}
	return bound, nil
}
