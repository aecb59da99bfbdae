// Command tweakctl is a CLI for inspecting and building .deb packages and
// for managing and searching iOS jailbreak package repositories.
//
// Grounded on cmd/deb-pm/main.go's subcommand/flag-set structure,
// generalized from a single "deb" mutate-and-repack command to the full
// set of operations this tool supports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"

	"github.com/evil0ctal/tweakcore/classify"
	"github.com/evil0ctal/tweakcore/core"
	"github.com/evil0ctal/tweakcore/deb"
	"github.com/evil0ctal/tweakcore/jbconfig"
	"github.com/evil0ctal/tweakcore/record"
	"github.com/evil0ctal/tweakcore/registry"
)

func findPackage(pkgs []*record.Package, packageID string) *record.Package {
	for _, p := range pkgs {
		if p.Package == packageID {
			return p
		}
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "deb":
		runDeb(os.Args[2:])
	case "repo":
		runRepo(os.Args[2:])
	case "search":
		runSearch(os.Args[2:])
	case "download":
		runDownload(os.Args[2:])
	case "config":
		runConfig(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tweakctl <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  deb       Inspect, extract, and build .deb packages")
	fmt.Println("  repo      Manage configured repositories")
	fmt.Println("  search    Search packages across enabled repositories")
	fmt.Println("  download  Download a package's .deb file")
	fmt.Println("  config    View or change jailbreak configuration")
}

// contextWithInterrupt returns a context canceled on SIGINT, so a
// long-running fetch or download can be interrupted cleanly. Callers
// should exit(2) when ctx.Err() is non-nil after a cancel.
func contextWithInterrupt() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func newCore() *core.Core {
	appDir := os.Getenv("TWEAKCTL_HOME")
	if appDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("resolving home directory: %v", err)
		}
		appDir = home + "/.tweakctl"
	}
	c, err := core.New(appDir)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	return c
}

// --- deb subcommand ---

func runDeb(args []string) {
	if len(args) == 0 {
		log.Fatal("usage: tweakctl deb <extract|build|info|contents|verify> [flags]")
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("deb "+sub, flag.ExitOnError)
	var path, folder, out string
	fs.StringVar(&path, "file", "", "path to a .deb file")
	fs.StringVar(&folder, "folder", "", "path to a package folder (DEBIAN/ + payload tree)")
	fs.StringVar(&out, "out", "", "output path")
	fs.Parse(rest)

	switch sub {
	case "extract":
		requireFlag(path, "-file")
		requireFlag(out, "-out")
		if err := deb.Extract(path, out); err != nil {
			log.Fatalf("extract: %v", err)
		}
	case "build":
		requireFlag(folder, "-folder")
		requireFlag(out, "-out")
		if err := deb.Build(folder, out, deb.CompressionGzip, true); err != nil {
			log.Fatalf("build: %v", err)
		}
	case "info":
		requireFlag(path, "-file")
		meta, err := deb.Info(path)
		if err != nil {
			log.Fatalf("info: %v", err)
		}
		fmt.Printf("%s %s (%s)\n", meta.Package, meta.Version, meta.Architecture)
		fmt.Printf("  Maintainer: %s\n", meta.Maintainer)
		fmt.Printf("  Description: %s\n", meta.Description)
	case "contents":
		requireFlag(path, "-file")
		control, data, err := deb.Contents(path)
		if err != nil {
			log.Fatalf("contents: %v", err)
		}
		for _, name := range control {
			fmt.Println("DEBIAN/" + name)
		}
		for _, name := range data {
			fmt.Println(name)
		}
	case "verify":
		requireFlag(path, "-file")
		if err := deb.Verify(path); err != nil {
			log.Fatalf("verify: %v", err)
		}
		fmt.Println("ok")
	default:
		log.Fatalf("unknown deb subcommand %q", sub)
	}
}

func requireFlag(value, name string) {
	if value == "" {
		log.Fatalf("%s is required", name)
	}
}

// --- repo subcommand ---

func runRepo(args []string) {
	if len(args) == 0 {
		log.Fatal("usage: tweakctl repo <list|add|remove|refresh> [flags]")
	}
	sub, rest := args[0], args[1:]
	c := newCore()

	switch sub {
	case "list":
		for _, repo := range registry.SortByName(c.Registry().All()) {
			status := "disabled"
			if repo.Enabled {
				status = "enabled"
			}
			fmt.Printf("%-30s %-10s %5d packages  %s\n", repo.Name, status, repo.PackagesCount, repo.URL)
		}
	case "add":
		fs := flag.NewFlagSet("repo add", flag.ExitOnError)
		var name, url, description string
		fs.StringVar(&name, "name", "", "repository name")
		fs.StringVar(&url, "url", "", "repository URL")
		fs.StringVar(&description, "description", "", "repository description")
		fs.Parse(rest)
		requireFlag(url, "-url")
		added, err := c.Registry().Add(registry.Repository{Name: name, URL: url, Description: description})
		if err != nil {
			log.Fatalf("add: %v", err)
		}
		if !added {
			log.Fatalf("a repository with URL %s already exists", url)
		}
	case "remove":
		fs := flag.NewFlagSet("repo remove", flag.ExitOnError)
		var url string
		fs.StringVar(&url, "url", "", "repository URL")
		fs.Parse(rest)
		requireFlag(url, "-url")
		if err := c.Registry().Remove(url); err != nil {
			log.Fatalf("remove: %v", err)
		}
	case "refresh":
		ctx, cancel := contextWithInterrupt()
		defer cancel()
		if err := c.RefreshAll(ctx); err != nil {
			if ctx.Err() != nil {
				os.Exit(2)
			}
			log.Fatalf("refresh: %v", err)
		}
	default:
		log.Fatalf("unknown repo subcommand %q", sub)
	}
}

// --- search subcommand ---

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var query, section string
	var showCompat bool
	fs.StringVar(&query, "q", "", "search query")
	fs.StringVar(&section, "section", "", "filter by section")
	fs.BoolVar(&showCompat, "compat", false, "show jailbreak compatibility classification")
	fs.Parse(args)

	c := newCore()
	ctx, cancel := contextWithInterrupt()
	defer cancel()

	matches, err := c.SearchPackages(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			os.Exit(2)
		}
		log.Fatalf("search: %v", err)
	}

	for _, p := range matches {
		if section != "" && p.Section != section {
			continue
		}
		line := fmt.Sprintf("%-40s %-10s %s", p.DisplayName(), p.Version, p.Architecture)
		if showCompat {
			line += " [" + classify.Classify(p).String() + "]"
		}
		fmt.Println(line)
	}
}

// --- download subcommand ---

func runDownload(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	var repoURL, packageID, dest string
	fs.StringVar(&repoURL, "repo", "", "source repository URL")
	fs.StringVar(&packageID, "package", "", "package identifier to download")
	fs.StringVar(&dest, "out", ".", "destination directory")
	fs.Parse(args)
	requireFlag(repoURL, "-repo")
	requireFlag(packageID, "-package")

	c := newCore()
	ctx, cancel := contextWithInterrupt()
	defer cancel()

	pkgs, err := c.FetchRepo(ctx, repoURL, false)
	if err != nil {
		log.Fatalf("fetching repository index: %v", err)
	}
	found := findPackage(pkgs, packageID)
	if found == nil {
		log.Fatalf("package %q not found in %s", packageID, repoURL)
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(packageID),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	var barTotalSet bool
	path, err := c.Download(ctx, repoURL, found, dest, func(percent int, done, total int64) {
		if total > 0 && !barTotalSet {
			bar.ChangeMax64(total)
			barTotalSet = true
		}
		bar.Set64(done)
	})
	bar.Finish()
	if err != nil {
		if ctx.Err() != nil {
			os.Exit(2)
		}
		log.Fatalf("download: %v", err)
	}
	fmt.Printf("saved to %s\n", path)
}

// --- config subcommand ---

func runConfig(args []string) {
	if len(args) == 0 {
		log.Fatal("usage: tweakctl config <show|set-mode> [flags]")
	}
	sub, rest := args[0], args[1:]
	c := newCore()

	switch sub {
	case "show":
		cfg := c.Config().Config()
		fmt.Printf("mode: %s\ndevice: %s\nfirmware: %s\nsileo headers: %v\n", cfg.Mode, cfg.DeviceModel, cfg.FirmwareVersion, cfg.UseSileoHeaders)
	case "set-mode":
		fs := flag.NewFlagSet("config set-mode", flag.ExitOnError)
		var mode string
		fs.StringVar(&mode, "mode", "", "rootless or rootful")
		fs.Parse(rest)
		switch jbconfig.Mode(mode) {
		case jbconfig.Rootless, jbconfig.Rootful:
			if err := c.SetMode(jbconfig.Mode(mode)); err != nil {
				log.Fatalf("set-mode: %v", err)
			}
		default:
			log.Fatalf("invalid mode %q, expected rootless or rootful", mode)
		}
	default:
		log.Fatalf("unknown config subcommand %q", sub)
	}
}
