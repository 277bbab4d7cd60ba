// Command psfactory converts project videos into rectangle containers, views
// them and patches runner executables.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"pixelshell/config"
	"pixelshell/internal/buildinfo"

	"github.com/sirupsen/logrus"
)

const usage = `usage: psfactory [-config file] [-log-level level] <command> [flags] [args]

commands:
  convert  [-res 1080p,720p] [-jobs n] [-gpu] [-compress] [-all] <project>...
  debug    [-res 1080p] [-file container] [-headless] [-ticks n] [<project>]
  build    [-res 1080p,720p] [-runner path] [-dist dir] <project>...
  inspect  <container>...
  list
  version`

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML configuration file.")
		logLevel = flag.String("log-level", "", "Override log_level (debug, info, warn, error).")
	)
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := cfg.ApplyLogLevel(); err != nil {
		fatalf("log level: %v", err)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch strings.ToLower(cmd) {
	case "convert":
		err = runConvert(cfg, args)
	case "debug":
		err = runDebug(cfg, args)
	case "build":
		err = runBuild(cfg, args)
	case "inspect":
		err = runInspect(args)
	case "list":
		err = runList(cfg)
	case "version":
		fmt.Println(buildinfo.String("psfactory"))
	default:
		fatalf("unknown command: %s\n%s", cmd, usage)
	}
	if err != nil {
		fatalf("%s: %v", cmd, err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(2)
}
