package loader

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geokit/pkg/netgraph"
)

// EdgeList reads a CSV edge list with "source" and "target" columns and an
// optional "weight" column into edges for graph construction. Extra columns
// are ignored.
func EdgeList(path string) ([]netgraph.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open edge list %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: edge list header %s", path)
	}

	var edges []netgraph.Edge
	for {
		var e netgraph.Edge
		if err := dec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "loader: decode edge in %s", path)
		}
		edges = append(edges, e)
	}
	return edges, nil
}
