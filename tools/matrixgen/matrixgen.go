package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mogaika/matrix3d/utils"
)

type params struct {
	Rows, Cols int
	Density    float64
	Max        float64
	Labels     bool
	Seed       int64
}

func generate(w io.Writer, p params) error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return errors.Errorf("Invalid size %dx%d", p.Rows, p.Cols)
	}
	if p.Density < 0 || p.Density > 1 {
		return errors.Errorf("Density %v out of [0, 1]", p.Density)
	}
	if p.Max <= 0 {
		return errors.Errorf("Max value %v must be positive", p.Max)
	}

	names := utils.NewNameGenerator(p.Seed)
	rnd := rand.New(rand.NewSource(p.Seed))

	header := make([]string, 0, p.Cols+1)
	if p.Labels {
		header = append(header, "name")
	}
	for c := 0; c < p.Cols; c++ {
		header = append(header, names.Name())
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for r := 0; r < p.Rows; r++ {
		i := 0
		if p.Labels {
			record[0] = names.Name()
			i = 1
		}
		for c := 0; c < p.Cols; c++ {
			v := 0.0
			if rnd.Float64() < p.Density {
				// keep at least one hundredth so the cell is never rounded to zero
				v = math.Max(0.01, math.Round(rnd.Float64()*p.Max*100)/100)
			}
			record[i+c] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func main() {
	var out string
	var p params
	flag.StringVar(&out, "o", "", "Output csv file (stdout if empty)")
	flag.IntVar(&p.Rows, "rows", 20, "Number of rows")
	flag.IntVar(&p.Cols, "cols", 20, "Number of columns")
	flag.Float64Var(&p.Density, "density", 0.6, "Share of cells with a positive value")
	flag.Float64Var(&p.Max, "max", 100, "Largest generated value")
	flag.BoolVar(&p.Labels, "labels", false, "Prepend a row label column")
	flag.Int64Var(&p.Seed, "seed", 1, "Random seed")
	flag.Parse()

	w := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}

	if err := generate(w, p); err != nil {
		log.Fatal(err)
	}
	if out != "" {
		log.Printf("Generated %dx%d matrix into %s", p.Rows, p.Cols, out)
	}
}
