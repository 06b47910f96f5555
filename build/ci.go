// Package main installs the counter commands with git version info.
//
//	go run build/ci.go install [packages]
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anyswap/soroban-counter/internal/build"
)

var (
	gobin, _ = filepath.Abs(filepath.Join("build", "bin"))

	defaultPackages = []string{
		"./cmd/counterserver",
		"./cmd/countertool",
	}
)

func main() {
	log.SetFlags(log.Lshortfile)

	if _, err := os.Stat(filepath.Join("build", "ci.go")); os.IsNotExist(err) {
		log.Fatal("this script must be run from the root of the repository")
	}
	if len(os.Args) < 2 {
		log.Fatal("need subcommand as first argument")
	}
	switch os.Args[1] {
	case "install":
		doInstall(os.Args[2:])
	default:
		log.Fatal("unknown command ", os.Args[1])
	}
}

func doInstall(cmdline []string) {
	_ = flag.CommandLine.Parse(cmdline)
	env := build.Env()

	packages := defaultPackages
	if flag.NArg() > 0 {
		packages = flag.Args()
	}

	goinstall := build.GoTool("install", env.LdFlags()...)
	goinstall.Args = append(goinstall.Args, "-v")
	goinstall.Args = append(goinstall.Args, packages...)
	goinstall.Env = append(goinstall.Env, "GOBIN="+gobin)
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "GOBIN=") {
			continue
		}
		goinstall.Env = append(goinstall.Env, e)
	}
	build.MustRun(goinstall)
}
