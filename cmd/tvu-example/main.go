package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/twpayne/go-tvu"
)

func run() error {
	configPath := flag.String("config", "", "path to yaml config")
	output := flag.String("output", "tvu.tif", "path to output uncertainty raster")
	flag.Parse()

	config := tvu.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = tvu.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	}

	def := tvu.GridDef{
		XMin:      0,
		YMax:      100,
		CellSizeX: 1,
		CellSizeY: 1,
		Width:     100,
		Height:    100,
		SRID:      32617,
	}

	lidar := tvu.NewDataset("lidar",
		tvu.WithWeight(2),
		tvu.WithSourceUncertainty95(0.196),
	)
	sonar := tvu.NewDataset("sonar",
		tvu.WithSourceUncertainty(0.5),
		tvu.WithOrder(tvu.Order1),
		tvu.WithTransforms(tvu.TransformStep{Name: "navd88-to-mllw", Uncertainty: 0.05}),
	)

	r := rand.New(rand.NewPCG(1, 2))
	var points []tvu.Point
	for range 4000 {
		x, y := 100*r.Float64(), 100*r.Float64()
		z := 10 - 0.4*y + 0.2*r.NormFloat64()
		d := lidar
		if z < 0 {
			d = sonar
		}
		points = append(points, d.PointWithUncertainty(x, y, z, sourceUncertaintyFor(d)))
	}

	engine := tvu.NewEngine(def, config,
		tvu.WithWarningFunc(func(err error) {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}),
	)
	result, err := engine.Run(context.Background(), []tvu.Pass{{Points: points}})
	if err != nil {
		return err
	}

	var sum float64
	var n int
	for row := range def.Height {
		for col := range def.Width {
			if v := result.TVU.Value(tvu.CellCoord{C: col, R: row}); !math.IsNaN(v) {
				sum += v
				n++
			}
		}
	}
	fmt.Printf("%d cells with data, mean TVU %.3f\n", n, sum/float64(n))

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	return tvu.WriteGeoTIFF(f, result.TVU)
}

func sourceUncertaintyFor(d *tvu.Dataset) float64 {
	u, err := d.ResolveSourceUncertainty(context.Background(), 0, 0)
	if err != nil {
		return math.NaN()
	}
	return u
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
