// meshgen is a headless CLI for building the creature and exporting meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/sculpt/internal/config"
	"github.com/Faultbox/sculpt/internal/creature"
	"github.com/Faultbox/sculpt/internal/engine/bake"
	"github.com/Faultbox/sculpt/internal/engine/mesh"
	"github.com/Faultbox/sculpt/internal/engine/scenegraph"
	"github.com/Faultbox/sculpt/internal/engine/surface"
	"github.com/Faultbox/sculpt/internal/export"
	"github.com/Faultbox/sculpt/internal/logger"
	"github.com/Faultbox/sculpt/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "stats":
		cmdStats(args)
	case "export", "x":
		cmdExport(args)
	case "shape":
		cmdShape(args)
	case "dump":
		cmdDump(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshgen - procedural creature mesh utility

Usage:
  meshgen <command> [options]

Commands:
  stats                 Show per-node mesh statistics
  export                Bake the posed creature and write a binary STL
  shape <kind>          Write one surface as STL (ellipsoid, hyperboloid,
                        lathe, spherocylinder, ribbon)
  dump                  Print the scene graph as YAML
  config                Write the default configuration

Common options:
  -config <file>        Config file (default: ./config.yaml or user config dir)
  -t <seconds>          Animation time to pose the creature at
  -v                    Log at the configured level instead of warnings only

Examples:
  meshgen stats
  meshgen export -t 1.5 -o creature.stl
  meshgen shape lathe -o tail.stl
  meshgen config -o config.yaml`)
}

// common holds the options every command accepts.
type common struct {
	configPath string
	time       float64
	verbose    bool
}

func newFlagSet(name string) (*flag.FlagSet, *common) {
	c := &common{}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&c.configPath, "config", "", "Path to config file")
	fs.Float64Var(&c.time, "t", 0, "Animation time in seconds (0 = rest pose)")
	fs.BoolVar(&c.verbose, "v", false, "Verbose logging")
	return fs, c
}

// setup loads the config and starts logging. Console logs share stdout with
// command output, so they are limited to warnings unless -v is given.
func (c *common) setup() *config.Config {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		fail(err)
	}
	level := "warn"
	if c.verbose {
		level = cfg.Logging.Level
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	return cfg
}

// rig builds the creature posed at c.time.
func (c *common) rig(cfg *config.Config) *creature.Rig {
	r, err := creature.Build(cfg.Creature)
	if err != nil {
		fail(err)
	}
	if c.time != 0 {
		if err := r.Animate(float32(c.time)); err != nil {
			fail(err)
		}
	}
	return r
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func cmdStats(args []string) {
	fs, c := newFlagSet("stats")
	fs.Parse(args)

	cfg := c.setup()
	defer logger.Sync()
	r := c.rig(cfg)

	fmt.Printf("%-24s %-14s %-8s %9s %9s\n", "NODE", "LAYOUT", "USAGE", "VERTICES", "TRIANGLES")
	err := r.Graph.Walk(func(_ scenegraph.NodeID, n *scenegraph.Node, _ math.Mat4, depth int) error {
		name := strings.Repeat("  ", depth) + n.Name
		if !n.Visible {
			name += " (hidden)"
		}
		if n.Mesh == nil {
			fmt.Printf("%-24s\n", name)
			return nil
		}
		fmt.Printf("%-24s %-14s %-8s %9d %9d\n", name, n.Mesh.Layout, n.Mesh.Usage,
			n.Mesh.VertexCount(), n.Mesh.TriangleCount())
		return nil
	})
	if err != nil {
		fail(err)
	}

	vertices, triangles := r.Stats()
	b := r.Bounds()
	size := b.Max.Sub(b.Min)
	fmt.Println()
	fmt.Printf("Nodes:     %d\n", r.Graph.Len())
	fmt.Printf("Vertices:  %d (distinct meshes)\n", vertices)
	fmt.Printf("Triangles: %d (distinct meshes)\n", triangles)
	fmt.Printf("Size:      %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
}

func cmdExport(args []string) {
	fs, c := newFlagSet("export")
	output := fs.String("o", "", "Output STL path (default from config)")
	all := fs.Bool("all", false, "Include the mist and the axis gizmo")
	fs.Parse(args)

	cfg := c.setup()
	defer logger.Sync()
	r := c.rig(cfg)

	if !*all {
		for _, id := range []scenegraph.NodeID{r.Nodes.Mist, r.Nodes.Gizmo} {
			if err := r.Graph.SetVisible(id, false); err != nil {
				fail(err)
			}
		}
	}

	baked, err := bake.Graph(r.Graph, "creature", math.Identity())
	if err != nil {
		fail(err)
	}

	path := cfg.Export.Output
	if *output != "" {
		path = *output
	}
	if err := export.WriteSTL(path, baked); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%d triangles)\n", path, baked.TriangleCount())
}

func cmdShape(args []string) {
	fs, c := newFlagSet("shape")
	output := fs.String("o", "", "Output STL path (default <kind>.stl)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshgen shape <kind> [-o file.stl]")
		os.Exit(1)
	}

	cfg := c.setup()
	defer logger.Sync()

	kind := surface.Kind(fs.Arg(0))
	gens := shapes(cfg.Creature)
	gen, ok := gens[kind]
	if !ok {
		kinds := make([]string, 0, len(gens))
		for k := range gens {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		fail(fmt.Errorf("unknown shape %q (want one of %s)", kind, strings.Join(kinds, ", ")))
	}

	m, err := gen.Generate()
	if err != nil {
		fail(err)
	}

	path := *output
	if path == "" {
		path = string(kind) + ".stl"
	}
	if err := export.WriteSTL(path, m); err != nil {
		fail(err)
	}
	printMesh(path, m)
}

// shapes maps each surface kind to the creature part that uses it.
func shapes(p creature.Params) map[surface.Kind]surface.Generator {
	return map[surface.Kind]surface.Generator{
		surface.KindEllipsoid:      p.Torso,
		surface.KindHyperboloid:    p.Leg,
		surface.KindLathe:          p.Tail,
		surface.KindSpherocylinder: p.Arm,
		surface.KindRibbon:         p.Fin,
	}
}

func printMesh(path string, m *mesh.Mesh) {
	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("  Layout:    %s\n", m.Layout)
	fmt.Printf("  Vertices:  %d\n", m.VertexCount())
	fmt.Printf("  Triangles: %d\n", m.TriangleCount())
}

func cmdDump(args []string) {
	fs, c := newFlagSet("dump")
	fs.Parse(args)

	cfg := c.setup()
	defer logger.Sync()
	r := c.rig(cfg)

	if err := r.Graph.Dump(os.Stdout); err != nil {
		fail(err)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Output path (default: user config dir)")
	fs.Parse(args)

	path := *output
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}
