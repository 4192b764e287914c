// Command arcade-sim steps a collision scenario without a window. It runs a
// fixed number of ticks and logs the result, or shows the world in the
// terminal with -tui. With -watch it rebuilds the scenario whenever the file
// (or a Lua script one of its rules loads) changes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/phanxgames/arcade"
	"github.com/phanxgames/arcade/scenario"
)

type options struct {
	configPath   string
	scenarioPath string
	ticks        int
	dt           float64
	watch        bool
	tui          bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "engine config (.toml, .yaml or .yml)")
	flag.StringVar(&opts.scenarioPath, "scenario", "", "scenario file to simulate")
	flag.IntVar(&opts.ticks, "ticks", 600, "ticks to run in headless mode")
	flag.Float64Var(&opts.dt, "dt", 1.0/60, "seconds per tick")
	flag.BoolVar(&opts.watch, "watch", false, "rebuild the scenario when it or its scripts change")
	flag.BoolVar(&opts.tui, "tui", false, "draw the world in the terminal")
	flag.Parse()

	if opts.scenarioPath == "" {
		flag.Usage()
		return errors.New("-scenario is required")
	}
	if opts.dt <= 0 {
		return fmt.Errorf("-dt must be > 0, got %g", opts.dt)
	}

	// 1. Load config
	cfg := arcade.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = arcade.LoadConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	// 2. Init logger. The terminal view owns the screen, so it only gets
	// warnings and above.
	if opts.tui && cfg.Logging.Level != "error" {
		cfg.Logging.Level = "warn"
	}
	log, err := arcade.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Build the scenario
	sim := &simulation{cfg: cfg, path: opts.scenarioPath, log: log}
	if err := sim.load(); err != nil {
		return err
	}
	defer sim.close()

	// 4. Optional hot reload
	var watcher *scenario.Watcher
	if opts.watch {
		watcher, err = scenario.WatchScenario(opts.scenarioPath, sim.inst.Scenario)
		if err != nil {
			return fmt.Errorf("watch %s: %w", opts.scenarioPath, err)
		}
		defer watcher.Close()
		sim.watcher = watcher
		log.Info("watching for changes",
			zap.Strings("files", sim.inst.Scenario.Files(opts.scenarioPath)))
	}

	if opts.tui {
		return runTUI(sim, watcher, opts.dt)
	}
	return runHeadless(sim, watcher, opts)
}

// simulation owns the current world and scenario instance and rebuilds both
// on reload.
type simulation struct {
	cfg  arcade.Config
	path string
	log  *zap.Logger

	world   *arcade.World
	inst    *scenario.Instance
	tick    int
	watcher *scenario.Watcher
}

func (s *simulation) load() error {
	sc, err := scenario.Load(s.path)
	if err != nil {
		return err
	}
	world := arcade.NewWorld(s.cfg)
	world.SetLogger(s.log)
	inst, err := scenario.Build(world, sc, s.log)
	if err != nil {
		return fmt.Errorf("build %s: %w", s.path, err)
	}
	s.close()
	s.world, s.inst, s.tick = world, inst, 0
	return nil
}

// reload rebuilds the scenario, keeping the running one if the new file is
// broken.
func (s *simulation) reload(changed string) {
	if err := s.load(); err != nil {
		s.log.Error("reload failed, keeping previous scenario",
			zap.String("changed", changed), zap.Error(err))
		return
	}
	s.log.Info("scenario reloaded", zap.String("changed", changed))
	// The new rules may load different scripts.
	if s.watcher != nil {
		if err := s.watcher.Track(s.inst.Scenario.Files(s.path)...); err != nil {
			s.log.Warn("watch scripts", zap.Error(err))
		}
	}
}

func (s *simulation) step(dt float64) error {
	s.tick++
	return s.inst.Step(dt)
}

func (s *simulation) close() {
	if s.inst != nil {
		s.inst.Close()
		s.inst = nil
	}
}

func runHeadless(sim *simulation, watcher *scenario.Watcher, opts options) error {
	report := max(int(1/opts.dt), 1)
	for sim.tick < opts.ticks {
		if watcher != nil {
			drainWatcher(sim, watcher)
		}
		if err := sim.step(opts.dt); err != nil {
			return fmt.Errorf("tick %d: %w", sim.tick, err)
		}
		if sim.tick%report == 0 {
			st := sim.world.Stats()
			sim.log.Info("tick",
				zap.Int("tick", sim.tick),
				zap.Int("accepted", st.Accepted),
				zap.Int("candidates", st.Candidates),
				zap.Int("cells", st.Cells))
		}
	}
	summarize(sim)
	return nil
}

// drainWatcher applies pending file changes without blocking.
func drainWatcher(sim *simulation, watcher *scenario.Watcher) {
	for {
		select {
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			sim.reload(name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			sim.log.Warn("watch error", zap.Error(err))
		default:
			return
		}
	}
}

func summarize(sim *simulation) {
	sc := sim.inst.Scenario
	for i, r := range sc.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		sim.log.Info("rule", zap.String("name", name), zap.Int("hits", sim.inst.Hits(name)))
	}
	visit(sim.world.Root(), func(n *arcade.Node) {
		sim.log.Info("body",
			zap.String("name", n.Name),
			zap.Float64("x", n.X),
			zap.Float64("y", n.Y),
			zap.Float64("vx", n.Velocity.X),
			zap.Float64("vy", n.Velocity.Y),
			zap.Bool("alive", n.Alive),
			zap.Stringer("touching", n.Touching))
	})
	ps := sim.world.PoolStats()
	sim.log.Info("pools",
		zap.Int("allocated_trees", ps.AllocatedTrees),
		zap.Int("allocated_lists", ps.AllocatedLists))
}

// visit calls fn for every entity below n.
func visit(n *arcade.Node, fn func(*arcade.Node)) {
	if !n.IsContainer() {
		fn(n)
		return
	}
	for _, m := range n.Members() {
		visit(m, fn)
	}
}
