package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"honnef.co/go/pathfx"
)

// Config holds the settings of one run. It is filled from defaults, then the
// TOML file named by -config, then the flags given on the command line.
type Config struct {
	Input    string     `toml:"ufo"`
	Output   string     `toml:"output"`
	LogLevel slog.Level `toml:"log_level"`
	// Workers limits the glyphs processed at once; zero uses all CPUs.
	Workers  int  `toml:"workers"`
	FailFast bool `toml:"fail_fast"`
	// AllGlyphs processes glyphs without open contours too.
	AllGlyphs bool `toml:"all_glyphs"`

	Noodle  NoodleConfig  `toml:"noodle"`
	Pattern PatternConfig `toml:"pattern"`

	configFile string
	verbose    bool
}

type NoodleConfig struct {
	// Size is the distance of each side of the noodle from the path, half
	// its width.
	Size       float64     `toml:"size"`
	CapStart   pathfx.Cap  `toml:"capstart"`
	CapEnd     pathfx.Cap  `toml:"capend"`
	Join       pathfx.Join `toml:"join"`
	MiterLimit float64     `toml:"miter_limit"`
	// Angle of the nib from the tangent. Only 0 is supported.
	Angle float64 `toml:"angle"`
}

type PatternConfig struct {
	Glyph string `toml:"glyph"`
	// Font, if set, is an OpenType or TrueType file the pattern glyph is
	// taken from instead of the UFO.
	Font       string        `toml:"font"`
	RepeatMode pathfx.Copies `toml:"repeat_mode"`
	ScaleX     float64       `toml:"sx"`
	ScaleY     float64       `toml:"sy"`
	Subdivide  int           `toml:"subdivide"`
	// Spacing is the padding trailing each copy of the pattern.
	Spacing       float64 `toml:"spacing"`
	NormalOffset  float64 `toml:"noffset"`
	TangentOffset float64 `toml:"toffset"`
	Stretch       bool    `toml:"stretch"`
	Simplify      bool    `toml:"simplify"`
	Center        bool    `toml:"center_pattern"`
	Vertical      bool    `toml:"vertical"`
	EndAnchor     bool    `toml:"end_anchor"`
	Warp          bool    `toml:"warp"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: slog.LevelInfo,
		Noodle: NoodleConfig{
			Size:       10,
			CapStart:   pathfx.RoundCap,
			CapEnd:     pathfx.RoundCap,
			Join:       pathfx.RoundJoin,
			MiterLimit: pathfx.DefaultNoodle.MiterLimit,
		},
		Pattern: PatternConfig{
			RepeatMode: pathfx.Repeated,
			ScaleX:     1,
			ScaleY:     1,
			Center:     true,
			Warp:       true,
		},
	}
}

const usage = `usage: ufostroke [flags] noodle|pattern [flags]

Applies a path effect to the open contours of every glyph of a UFO.

Run 'ufostroke noodle -h' or 'ufostroke pattern -h' for the flags of each
effect.
`

var errUsage = errors.New("usage")

// The flags below take their defaults from c, so that flags bound to a
// config read from a file keep the file's values unless given.

func addCommonFlags(fs *flag.FlagSet, c *Config) {
	for _, name := range []string{"ufo", "i"} {
		fs.StringVar(&c.Input, name, c.Input, "the input UFO")
	}
	for _, name := range []string{"output", "o"} {
		fs.StringVar(&c.Output, name, c.Output, "write to a copy of the input at this path instead of modifying it")
	}
	fs.StringVar(&c.configFile, "config", c.configFile, "TOML file with default settings")
	fs.TextVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.verbose, "v", c.verbose, "log at debug level")
	fs.IntVar(&c.Workers, "workers", c.Workers, "number of glyphs processed at once (0 for all CPUs)")
	fs.BoolVar(&c.FailFast, "fail-fast", c.FailFast, "stop at the first glyph that fails")
	fs.BoolVar(&c.AllGlyphs, "all", c.AllGlyphs, "process glyphs without open contours too")
}

func addNoodleFlags(fs *flag.FlagSet, c *NoodleConfig) {
	fs.Float64Var(&c.Size, "size", c.Size, "distance of each side of the noodle from the path")
	fs.TextVar(&c.CapStart, "capstart", c.CapStart, "cap at the start of strokes (round, circle, square, butt)")
	fs.TextVar(&c.CapEnd, "capend", c.CapEnd, "cap at the end of strokes (round, circle, square, butt)")
	fs.TextVar(&c.Join, "join", c.Join, "join between segments (round, circle, miter, bevel)")
	fs.Float64Var(&c.MiterLimit, "miter-limit", c.MiterLimit, "miter limit as a ratio of miter length to width")
	fs.Float64Var(&c.Angle, "angle", c.Angle, "angle of the noodle from the tangent (unsupported)")
}

func addPatternFlags(fs *flag.FlagSet, c *PatternConfig) {
	for _, name := range []string{"pattern-glyph", "p"} {
		fs.StringVar(&c.Glyph, name, c.Glyph, "the glyph containing the pattern")
	}
	fs.StringVar(&c.Font, "pattern-font", c.Font, "take the pattern glyph from this OpenType or TrueType font")
	for _, name := range []string{"repeat-mode", "r"} {
		fs.TextVar(&c.RepeatMode, name, c.RepeatMode, "single or repeated")
	}
	fs.Float64Var(&c.ScaleX, "sx", c.ScaleX, "scale of the pattern along the path")
	fs.Float64Var(&c.ScaleY, "sy", c.ScaleY, "scale of the pattern across the path")
	fs.IntVar(&c.Subdivide, "subdivide", c.Subdivide, "how many times to split the pattern's segments before bending")
	fs.Float64Var(&c.Spacing, "spacing", c.Spacing, "padding trailing each copy")
	fs.Float64Var(&c.NormalOffset, "noffset", c.NormalOffset, "offset of the pattern along the normal of the path")
	fs.Float64Var(&c.TangentOffset, "toffset", c.TangentOffset, "offset of the pattern along the tangent of the path")
	fs.BoolVar(&c.Stretch, "stretch", c.Stretch, "stretch the copies to fill the path")
	fs.BoolVar(&c.Simplify, "simplify", c.Simplify, "merge the segments of every copy")
	fs.BoolVar(&c.Center, "center_pattern", c.Center, "center the pattern on the path; otherwise its origin is placed on it")
	fs.BoolVar(&c.Vertical, "vertical", c.Vertical, "the pattern is drawn upright")
	fs.BoolVar(&c.EndAnchor, "end-anchor", c.EndAnchor, "pin the first and last copy to the ends of open paths")
	fs.BoolVar(&c.Warp, "warp", c.Warp, "bend the copies along the path")
}

// parseArgs parses the global flags, the command and its flags into c.
func parseArgs(args []string, c *Config, output io.Writer) (string, error) {
	global := flag.NewFlagSet("ufostroke", flag.ContinueOnError)
	global.SetOutput(output)
	global.Usage = func() {
		fmt.Fprint(output, usage)
		global.PrintDefaults()
	}
	addCommonFlags(global, c)
	if err := global.Parse(args); err != nil {
		return "", err
	}
	if global.NArg() == 0 {
		global.Usage()
		return "", fmt.Errorf("%w: no command", errUsage)
	}
	cmd := global.Arg(0)
	fs := flag.NewFlagSet("ufostroke "+cmd, flag.ContinueOnError)
	fs.SetOutput(output)
	addCommonFlags(fs, c)
	switch cmd {
	case "noodle":
		addNoodleFlags(fs, &c.Noodle)
	case "pattern":
		addPatternFlags(fs, &c.Pattern)
	default:
		global.Usage()
		return "", fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		return "", fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return cmd, nil
}

// loadConfig returns the command and the settings of a run.
func loadConfig(args []string, output io.Writer) (string, Config, error) {
	c := defaultConfig()
	cmd, err := parseArgs(args, &c, output)
	if err != nil {
		return "", Config{}, err
	}
	if c.configFile != "" {
		file := defaultConfig()
		if err := readConfigFile(c.configFile, &file); err != nil {
			return "", Config{}, err
		}
		// Parse again on top of the file so that given flags win.
		if _, err := parseArgs(args, &file, io.Discard); err != nil {
			return "", Config{}, err
		}
		c = file
	}
	if c.verbose {
		c.LogLevel = slog.LevelDebug
	}
	if c.Input == "" {
		return "", Config{}, fmt.Errorf("%w: -ufo is required", errUsage)
	}
	if cmd == "pattern" && c.Pattern.Glyph == "" {
		return "", Config{}, fmt.Errorf("%w: -pattern-glyph is required", errUsage)
	}
	return cmd, c, nil
}

func readConfigFile(path string, c *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
