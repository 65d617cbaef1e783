package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"noface/internal/config"
)

// renderFlags are the video and speech flags shared by generate and render.
type renderFlags struct {
	configPath   string
	width        int
	height       int
	fps          int
	duration     float64
	color1       string
	color2       string
	engine       string
	language     string
	slow         bool
	voice        string
	font         string
	maxLineChars int
}

func (f *renderFlags) register(fs *pflag.FlagSet) {
	defaults := config.Default()

	fs.StringVar(&f.configPath, "config", "", "TOML config file overlaid on the defaults")
	fs.IntVar(&f.width, "width", defaults.Width, "video width in pixels")
	fs.IntVar(&f.height, "height", defaults.Height, "video height in pixels")
	fs.IntVar(&f.fps, "fps", defaults.FPS, "frames per second")
	fs.Float64Var(&f.duration, "duration", defaults.MaxDurationSeconds, "maximum video duration in seconds")
	fs.StringVar(&f.color1, "color1", defaults.Color1, "gradient top color")
	fs.StringVar(&f.color2, "color2", defaults.Color2, "gradient bottom color")
	fs.StringVar(&f.engine, "engine", defaults.Speech.Engine, "speech engine: gtts, openai, edge")
	fs.StringVar(&f.language, "lang", defaults.Speech.Language, "narration language code")
	fs.BoolVar(&f.slow, "slow", defaults.Speech.Slow, "slow narration (gtts)")
	fs.StringVar(&f.voice, "voice", defaults.Speech.Voice, "voice name (openai, edge)")
	fs.StringVar(&f.font, "font", defaults.Caption.FontPath, "TrueType font for captions (default: embedded Go Bold)")
	fs.IntVar(&f.maxLineChars, "max-line-chars", defaults.Caption.MaxLineChars, "caption characters per line")
}

// resolve loads the config file and applies the flags set on the command line.
func (f *renderFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("fps") {
		cfg.FPS = f.fps
	}
	if changed("duration") {
		cfg.MaxDurationSeconds = f.duration
	}
	if changed("color1") {
		cfg.Color1 = f.color1
	}
	if changed("color2") {
		cfg.Color2 = f.color2
	}
	if changed("engine") {
		cfg.Speech.Engine = f.engine
	}
	if changed("lang") {
		cfg.Speech.Language = f.language
	}
	if changed("slow") {
		cfg.Speech.Slow = f.slow
	}
	if changed("voice") {
		cfg.Speech.Voice = f.voice
	}
	if changed("font") {
		cfg.Caption.FontPath = f.font
	}
	if changed("max-line-chars") {
		cfg.Caption.MaxLineChars = f.maxLineChars
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
