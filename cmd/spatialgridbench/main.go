// Command spatialgridbench churns a PointGrid and an AABBGrid through
// insert/move/remove/query cycles and reports throughput, replacing the
// terrain-noise benchmark this tree's teacher shipped.
package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kelindar/bench"
	"github.com/kelindar/spatialgrid"
	"github.com/kelindar/spatialgrid/geom"
	"go.uber.org/zap"
)

var sizes = []int{1e3, 1e5}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	bench.Run(func(b *bench.B) {
		runPointQuery(b, logger)
		runPointChurn(b, logger)
		runAABBQuery(b, logger)
	}, bench.WithDuration(10*time.Millisecond), bench.WithSamples(100))
}

func runPointQuery(b *bench.B, logger *zap.Logger) {
	for _, size := range sizes {
		g, err := spatialgrid.NewPointGrid[int](10, spatialgrid.WithLogger(logger))
		if err != nil {
			panic(err)
		}
		points := dataRand(size)
		for i, p := range points {
			if _, err := g.Insert(geom.Pt(p[0], p[1]), i); err != nil {
				panic(err)
			}
		}

		name := fmt.Sprintf("point query_around (%s)", formatSize(size))
		b.Run(name, func(i int) {
			p := points[i%len(points)]
			for range g.QueryAround(geom.Pt(p[0], p[1]), 5) {
			}
		})
	}
}

func runPointChurn(b *bench.B, logger *zap.Logger) {
	for _, size := range sizes {
		g, err := spatialgrid.NewPointGrid[int](10, spatialgrid.WithLogger(logger))
		if err != nil {
			panic(err)
		}
		points := dataRand(size)
		handles := make([]spatialgrid.Handle, size)
		for i, p := range points {
			h, err := g.Insert(geom.Pt(p[0], p[1]), i)
			if err != nil {
				panic(err)
			}
			handles[i] = h
		}

		name := fmt.Sprintf("point set_position+maintain (%s)", formatSize(size))
		b.Run(name, func(i int) {
			h := handles[i%len(handles)]
			p := points[(i+1)%len(points)]
			if err := g.SetPosition(h, geom.Pt(p[0], p[1])); err != nil {
				panic(err)
			}
			if i%len(handles) == len(handles)-1 {
				g.Maintain()
			}
		})
	}
}

func runAABBQuery(b *bench.B, logger *zap.Logger) {
	for _, size := range sizes {
		g, err := spatialgrid.NewAABBGrid[int](10, spatialgrid.WithLogger(logger))
		if err != nil {
			panic(err)
		}
		points := dataRand(size)
		for i, p := range points {
			box := geom.AABB{LL: geom.Pt(p[0]-1, p[1]-1), UR: geom.Pt(p[0]+1, p[1]+1)}
			if _, err := g.Insert(box, i); err != nil {
				panic(err)
			}
		}

		name := fmt.Sprintf("aabb query (%s)", formatSize(size))
		b.Run(name, func(i int) {
			p := points[i%len(points)]
			query := geom.AABB{LL: geom.Pt(p[0]-5, p[1]-5), UR: geom.Pt(p[0]+5, p[1]+5)}
			for range g.Query(query) {
			}
		})
	}
}

func dataRand(n int) [][2]float32 {
	pts := make([][2]float32, n)
	for i := range pts {
		pts[i] = [2]float32{
			rand.Float32()*2000 - 1000,
			rand.Float32()*2000 - 1000,
		}
	}
	return pts
}

func formatSize(n int) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%dM", n/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%dK", n/1_000)
	}
	return fmt.Sprintf("%d", n)
}
