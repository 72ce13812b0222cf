package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geokit/pkg/geodata"
	"github.com/sells-group/geokit/pkg/loader"
	"github.com/sells-group/geokit/pkg/reduce"
	"github.com/sells-group/geokit/pkg/spatialjoin"
)

var joinFlags struct {
	source       string
	target       string
	frame        string
	policy       string
	attr         string
	areaWeighted bool
	out          string
	workers      int
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Spatial join of two shapefile layers",
	Long:  "For each source geometry, finds intersecting target geometries and applies a selection or aggregation policy.",
	RunE:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&joinFlags.source, "source", "", "source shapefile path (required)")
	joinCmd.Flags().StringVar(&joinFlags.target, "target", "", "target shapefile path (required)")
	joinCmd.Flags().StringVar(&joinFlags.frame, "frame", "EPSG:4326", "coordinate reference frame of both layers")
	joinCmd.Flags().StringVar(&joinFlags.policy, "policy", "first", "join policy: first, all, or a reducer (mean, sum, count, min, max)")
	joinCmd.Flags().StringVar(&joinFlags.attr, "attr", "", "target attribute for aggregation policies")
	joinCmd.Flags().BoolVar(&joinFlags.areaWeighted, "area-weighted", false, "weight aggregation by fractional overlap area")
	joinCmd.Flags().StringVar(&joinFlags.out, "out", "joined.csv", "output path (.csv or .geojson)")
	joinCmd.Flags().IntVar(&joinFlags.workers, "workers", 0, "parallel workers (0 uses config)")
	_ = joinCmd.MarkFlagRequired("source")
	_ = joinCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(joinCmd)
}

func runJoin(cmd *cobra.Command, args []string) error {
	frame, err := geodata.ParseFrame(joinFlags.frame)
	if err != nil {
		return err
	}
	source, err := loader.Shapefile(joinFlags.source, frame)
	if err != nil {
		return err
	}
	target, err := loader.Shapefile(joinFlags.target, frame)
	if err != nil {
		return err
	}

	policy, err := parsePolicy(joinFlags.policy, joinFlags.attr, joinFlags.areaWeighted)
	if err != nil {
		return err
	}

	workers := joinFlags.workers
	if workers <= 0 {
		workers = cfg.Join.Workers
	}

	result, err := spatialjoin.Join(cmd.Context(), source, target, policy,
		spatialjoin.WithWorkers(workers))
	if err != nil {
		return err
	}

	zap.L().Info("spatial join complete",
		zap.Int("source", source.Len()),
		zap.Int("target", target.Len()),
		zap.String("policy", joinFlags.policy),
	)
	return writeJoinResult(source, result)
}

func parsePolicy(name, attr string, areaWeighted bool) (spatialjoin.Policy, error) {
	switch name {
	case "first":
		return spatialjoin.FirstMatch(), nil
	case "all":
		return spatialjoin.AllMatches(), nil
	default:
		r, err := reduce.ByName(name)
		if err != nil {
			return spatialjoin.Policy{}, err
		}
		if attr == "" && name != "count" {
			return spatialjoin.Policy{}, eris.Errorf("geokit: policy %q requires --attr", name)
		}
		if areaWeighted {
			return spatialjoin.AreaWeighted(r, attr), nil
		}
		return spatialjoin.Aggregate(r, attr), nil
	}
}

func writeJoinResult(source *geodata.Collection, result *spatialjoin.Result) error {
	if strings.HasSuffix(joinFlags.out, ".geojson") {
		values := make([]*float64, len(result.Matches))
		for i, m := range result.Matches {
			if m.HasValue {
				v := m.Value
				values[i] = &v
			}
		}
		col := "join_" + joinFlags.policy
		if joinFlags.attr != "" {
			col += "_" + joinFlags.attr
		}
		out, err := withValueColumn(source, col, values)
		if err != nil {
			return err
		}
		return writeGeoJSON(joinFlags.out, out)
	}

	rows := make([][]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, []string{
			strconv.Itoa(m.Source),
			formatTarget(m),
			formatValue(m),
		})
	}
	return writeCSV(joinFlags.out, []string{"source_index", "targets", "value"}, rows)
}

func formatTarget(m spatialjoin.Match) string {
	if m.Targets != nil {
		parts := make([]string, len(m.Targets))
		for i, t := range m.Targets {
			parts[i] = strconv.Itoa(t)
		}
		return strings.Join(parts, " ")
	}
	if m.Target >= 0 {
		return strconv.Itoa(m.Target)
	}
	return ""
}

func formatValue(m spatialjoin.Match) string {
	if !m.HasValue {
		return ""
	}
	return fmt.Sprintf("%g", m.Value)
}
