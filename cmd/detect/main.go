// Command detect runs shapedetect.Detect against a point file and prints
// the extracted shapes, modeled on the flag-driven, panic-on-error
// realMain() style of armplanning's cmd-plan.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"

	"go.viam.com/shapedetect"
	"go.viam.com/shapedetect/internal/logging"
	"go.viam.com/shapedetect/pointset"
	"go.viam.com/shapedetect/shapes"
)

func main() {
	if err := realMain(); err != nil {
		panic(err)
	}
}

func realMain() error {
	epsilon := flag.Float64("epsilon", 0.01, "max inlier distance")
	normalThreshold := flag.Float64("normal-threshold", 0.9, "max normal deviation (1 - |cos|)")
	clusterEpsilon := flag.Float64("cluster-epsilon", 0.02, "connected-component grid cell size")
	minPoints := flag.Int("min-points", 200, "minimum inliers to extract a shape")
	probabilityThreshold := flag.Float64("probability-threshold", 0.01, "overlook probability to stop at")
	seed := flag.Int64("seed", 1, "PRNG seed")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if len(flag.Args()) == 0 {
		return fmt.Errorf("need a point file (lines of \"x y z nx ny nz\")")
	}

	logger := logging.NewLogger("detect")
	if *verbose {
		logger.SetLevel(logging.DEBUG)
	}

	logger.Infow("reading points", "path", flag.Arg(0))
	points, err := readPoints(flag.Arg(0))
	if err != nil {
		return err
	}

	cfg := shapedetect.DefaultConfig()
	cfg.Epsilon = *epsilon
	cfg.NormalThreshold = *normalThreshold
	cfg.ClusterEpsilon = *clusterEpsilon
	cfg.MinPoints = *minPoints
	cfg.ProbabilityThreshold = *probabilityThreshold
	cfg.Seed = *seed

	registry := shapes.NewRegistry(shapes.DefaultKinds()...)
	result, err := shapedetect.Detect(points, registry, cfg, logger)
	if err != nil {
		return err
	}

	for i, shape := range result.Shapes {
		fmt.Printf("shape %d: %s, %d points\n", i, shape.KindTag, len(shape.Indices))
	}
	fmt.Printf("%d points unassigned\n", len(result.UnassignedIndices))
	return nil
}

// readPoints parses whitespace-separated "x y z nx ny nz" lines, skipping
// blank lines and lines starting with '#'.
func readPoints(path string) ([]pointset.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []pointset.Point
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: expected 6 fields, got %d", lineNum, len(fields))
		}
		vals := make([]float64, 6)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			vals[i] = v
		}
		points = append(points, pointset.Point{
			Position: r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]},
			Normal:   r3.Vector{X: vals[3], Y: vals[4], Z: vals[5]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
