// Package build helpers used by build/ci.go
package build

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DryRunFlag dry run flag
var DryRunFlag = flag.Bool("n", false, "dry run, don't execute commands")

// Environment build environment
type Environment struct {
	Commit string
	Date   string
}

// Env read commit and commit date from git, empty outside a git checkout
func Env() *Environment {
	commit := RunGit("rev-parse", "HEAD")
	if commit == "" {
		return &Environment{}
	}
	return &Environment{
		Commit: commit,
		Date:   RunGit("show", "-s", "--format=%cd", "--date=format:%Y%m%d", commit),
	}
}

// MustRun executes the given command and exits the host process for
// any error.
func MustRun(cmd *exec.Cmd) {
	fmt.Println(">>>", strings.Join(cmd.Args, " "))
	if *DryRunFlag {
		return
	}
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		log.Fatal(err)
	}
}

// RunGit runs a git subcommand and returns its trimmed output,
// empty if git is missing or fails.
func RunGit(args ...string) string {
	cmd := exec.Command("git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		log.Println("git", strings.Join(args, " "), "failed:", err, stderr.String())
		return ""
	}
	return strings.TrimSpace(stdout.String())
}

// GoTool go command of the running GOROOT
func GoTool(tool string, args ...string) *exec.Cmd {
	args = append([]string{tool}, args...)
	return exec.Command(filepath.Join(runtime.GOROOT(), "bin", "go"), args...) //nolint:gosec // fixed binary
}

// LdFlags version flags injected into main packages
func (env *Environment) LdFlags() []string {
	if env.Commit == "" {
		return nil
	}
	ld := []string{
		"-X", "main.gitCommit=" + env.Commit,
		"-X", "main.gitDate=" + env.Date,
	}
	return []string{"-ldflags", strings.Join(ld, " ")}
}
