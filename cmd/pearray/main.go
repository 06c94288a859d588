// Copyright (C) 2024 The PearRay-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pearray is the engine's entry point: it builds a render.Context
// over one in-process scene and drives it to completion, reporting progress
// through internal/log and exiting with the code §6/§7 assign to each
// outcome. Scene description parsing, mesh loading and image output are
// external collaborators named by interface only (§1 Non-goals); this CLI
// stands in for them with the built-in demo scenes internal/scene ships.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PearCoding/PearRay-go/internal/cache"
	"github.com/PearCoding/PearRay-go/internal/framebuffer"
	"github.com/PearCoding/PearRay-go/internal/integrator"
	"github.com/PearCoding/PearRay-go/internal/log"
	"github.com/PearCoding/PearRay-go/internal/mis"
	"github.com/PearCoding/PearRay-go/internal/render"
	"github.com/PearCoding/PearRay-go/internal/scene"
	"github.com/PearCoding/PearRay-go/internal/tile"
)

// Exit codes, per spec.md §6.
const (
	exitSuccess       = 0
	exitInvalidScene  = 1
	exitMissingPlugin = 2
	exitIOFailure     = 3
	exitCancelled     = 4
)

type options struct {
	pluginPath []string
	workdir    string
	threads    int
	seed       uint64
	crop       string
	integ      string
	width      int
	height     int
}

func main() {
	os.Exit(run())
}

func run() int {
	var opt options

	cmd := &cobra.Command{
		Use:   "pearray <scene>",
		Short: "Offline spectral renderer",
		Long: "Offline spectral renderer. <scene> names one of the built-in demo scenes " +
			"(furnace, cornell); scene description files are not parsed.",
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringSliceVar(&opt.pluginPath, "plugin-path", nil, "directories to search for plugin factories")
	cmd.Flags().StringVar(&opt.workdir, "workdir", ".", "working directory (cache/ is created beneath it)")
	cmd.Flags().IntVar(&opt.threads, "threads", 0, "worker thread count (0 = auto)")
	cmd.Flags().Uint64Var(&opt.seed, "seed", 0, "global RNG seed")
	cmd.Flags().StringVar(&opt.crop, "crop", "0,1,0,1", "crop rectangle xmin,xmax,ymin,ymax in [0,1]")
	cmd.Flags().StringVar(&opt.integ, "integrator", "direct", "direct, bidirectional or ppm")
	cmd.Flags().IntVar(&opt.width, "width", 320, "output image width")
	cmd.Flags().IntVar(&opt.height, "height", 240, "output image height")

	code := exitSuccess
	cmd.RunE = func(_ *cobra.Command, args []string) error {
		code = runRender(args[0], opt)
		return nil
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidScene
	}
	return code
}

// pluginPaths merges --plugin-path with PR_PLUGIN_PATH, consulted after the
// flag per §6.
func pluginPaths(opt options) []string {
	paths := append([]string{}, opt.pluginPath...)
	if env := os.Getenv("PR_PLUGIN_PATH"); env != "" {
		paths = append(paths, strings.Split(env, ":")...)
	}
	return paths
}

func parseCrop(s string, width, height int) (tile.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return tile.Rect{}, fmt.Errorf("--crop needs 4 comma-separated values, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return tile.Rect{}, fmt.Errorf("--crop value %q: %w", p, err)
		}
		v[i] = f
	}
	return tile.Rect{
		MinX: int(v[0] * float64(width)),
		MaxX: int(v[1] * float64(width)),
		MinY: int(v[2] * float64(height)),
		MaxY: int(v[3] * float64(height)),
	}, nil
}

func buildIntegrator(name string) (integrator.Integrator, error) {
	switch name {
	case "direct":
		return integrator.NewDirect(integrator.DirectConfig{
			MaxDepth: 8, RRMinDepth: 3, LightSamples: 1,
			Heuristic: mis.Power, SamplesPerPixel: 64,
		}), nil
	case "bidirectional":
		return integrator.NewBidirectional(integrator.BidirectionalConfig{
			MaxEyeDepth: 8, MaxLightDepth: 8, RRMinDepth: 3,
			Heuristic: mis.Power, SamplesPerPixel: 64,
		}), nil
	case "ppm":
		return integrator.NewPPM(integrator.PPMConfig{
			InitialRadius: 0.1, Alpha: 2.0 / 3.0, MaxPasses: 10,
			PhotonsPerPass: 100000, MaxDepth: 8, RRMinDepth: 3,
		}), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}

type progressObserver struct{ lctx log.Context }

func (p progressObserver) OnPassComplete(pass int, finishedPixels, totalPixels int) {
	p.lctx.Info().Log("pass %d: %d/%d pixels finished", pass, finishedPixels, totalPixels)
}

func (p progressObserver) OnTileComplete(int) {}

func runRender(sceneArg string, opt options) int {
	lctx := log.Wrap(context.Background()).WithHandler(log.Std()).WithLevel(log.Info)

	if _, err := cache.NewManager(opt.workdir); err != nil {
		lctx.Error().Cause(err).Log("preparing workdir cache failed")
		return exitIOFailure
	}

	if len(pluginPaths(opt)) > 0 {
		// External plugin discovery (dlopen-ing shared objects named by
		// --plugin-path/PR_PLUGIN_PATH) is out of scope; every path given is
		// presently unreachable, which is the spec's "missing plugin" case.
		lctx.Error().Log("no plugin loader is available to satisfy --plugin-path/PR_PLUGIN_PATH")
		return exitMissingPlugin
	}

	built, err := scene.BuildDemo(scene.Demo(sceneArg), opt.width, opt.height)
	if err != nil {
		lctx.Error().Cause(err).Log("invalid scene %q", sceneArg)
		return exitInvalidScene
	}

	crop, err := parseCrop(opt.crop, opt.width, opt.height)
	if err != nil {
		lctx.Error().Cause(err).Log("invalid crop")
		return exitInvalidScene
	}

	integ, err := buildIntegrator(opt.integ)
	if err != nil {
		lctx.Error().Cause(err).Log("invalid integrator")
		return exitInvalidScene
	}

	world := built.World
	boundMin, boundMax := world.Bounds()
	sc := integrator.Scene{
		Materials:   world,
		Emitters:    scene.Emitter{W: world},
		Occluder:    world,
		Intersector: world,
		Background:  scene.Background{Lights: world.Infinite},
		BoundMin:    boundMin,
		BoundMax:    boundMax,
	}

	fb := framebuffer.NewMap(opt.width, opt.height, framebuffer.Channels{})

	cfg := render.Config{
		Threads:             opt.threads,
		MaxParallelRays:     4096,
		Layout:              tile.Checker,
		Seed:                opt.seed,
		SamplesPerIteration: 1,
		Crop:                crop,
	}

	ctx := render.NewContext(cfg, built.Camera, world, integ, sc, fb, progressObserver{lctx: lctx}, true)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			ctx.Stop()
			cancel()
		case <-runCtx.Done():
		}
	}()

	start := time.Now()
	runErr := ctx.Run(log.Wrap(runCtx).WithHandler(log.Std()).WithLevel(log.Info))
	lctx.Info().Log("render wall time: %s", time.Since(start))

	if runErr != nil {
		if runCtx.Err() != nil {
			lctx.Notice().Log("render cancelled")
			return exitCancelled
		}
		lctx.Error().Cause(runErr).Log("render failed")
		return exitIOFailure
	}

	reportSummary(lctx, fb, opt.width, opt.height)
	return exitSuccess
}

// reportSummary prints a small per-channel diagnostic dump; OpenImageIO
// output (§6) is an external collaborator this CLI does not implement.
func reportSummary(lctx log.Context, fb *framebuffer.Map, width, height int) {
	var sum float32
	var feedback framebuffer.Feedback
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum += fb.Spectral(x, y).Avg()
			feedback |= fb.Feedback(x, y)
		}
	}
	lctx.Info().Log("mean luminance: %.4f, feedback bits: %08b", sum/float32(width*height), feedback)
}
