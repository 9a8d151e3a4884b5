package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs  []string `arg:"" optional:"" name:"configs" help:"Configuration files applied on top of the defaults." type:"file"`
		Headless bool     `help:"Run without the system tray."`
		Record   string   `help:"Record every analyzed landmark frame to this trace file." type:"path"`
	} `cmd:"" help:"Start the camera pipeline, the renderer server and the tray."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`

	Replay struct {
		Trace   string   `arg:"" name:"trace" help:"Trace file recorded with serve --record." type:"existingfile"`
		Configs []string `name:"config" short:"c" help:"Configuration files applied on top of the defaults." type:"file"`
	} `cmd:"" help:"Run the menu and game against a recorded landmark trace."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		if err := serveCommand(nil, false, ""); err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("headshaker"),
		kong.Description("a head, face and voice controlled menu and falling-block game"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf("headshaker %s (commit %s)\n", version, gitCommit)
		os.Exit(0)
	}

	var err error
	switch ctx.Command() {
	case "serve", "serve <configs>":
		err = serveCommand(CLI.Serve.Configs, CLI.Serve.Headless, CLI.Serve.Record)
	case "config":
		_, err = os.Stdout.Write(config.Default)
	case "replay <trace>":
		err = replayCommand(CLI.Replay.Trace, CLI.Replay.Configs)
	}
	if err != nil {
		writeError(err)
	}
}
