// gallerytool is a CLI utility for inspecting artwork lists and baking
// pre-scaled LOD images for them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/midgard-gallery/internal/assets"
	"github.com/Faultbox/midgard-gallery/internal/catalog"
	"github.com/Faultbox/midgard-gallery/internal/lod"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "list", "ls":
		cmdList(args)
	case "lods", "bake":
		cmdLODs(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gallerytool - artwork list utility

Usage:
  gallerytool <command> [options]

Commands:
  info [-check] <list.json>          Show list statistics
  list <list.json> [pattern]         List artworks (optional title/author filter)
  lods [options] <list.json>         Bake pre-scaled images for every artwork

Examples:
  gallerytool info -check assets/obras.json
  gallerytool list assets/obras.json "goya"
  gallerytool lods -out assets/lods -tiers 256,512,1024 -o assets/obras.lod.json assets/obras.json`)
}

// loadList reads the list at path (a file or URL) and returns it with a
// source that resolves image paths against root.
func loadList(root, path string) (*catalog.Catalog, assets.Loader) {
	list, err := assets.NewSource(assets.Options{Timeout: 30 * time.Second})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	data, err := list.Load(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	c, err := catalog.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src, err := assets.NewSource(assets.Options{Root: root, Timeout: 30 * time.Second})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c, src
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	check := fs.Bool("check", false, "Load every image and report failures")
	root := fs.String("root", ".", "Root for relative image paths")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gallerytool info [-check] <list.json>")
		os.Exit(1)
	}

	c, src := loadList(*root, fs.Arg(0))

	tierCount := make(map[int]int)
	var noImage, withLODs int
	for _, e := range c.List {
		if e.Image == "" {
			noImage++
		}
		if len(e.LODs) > 0 {
			withLODs++
		}
		for t := range e.LODs {
			tierCount[t]++
		}
	}

	fmt.Printf("List:      %s\n", fs.Arg(0))
	fmt.Printf("Artworks:  %d\n", c.Len())
	fmt.Printf("No image:  %d\n", noImage)
	fmt.Printf("With LODs: %d\n", withLODs)

	if len(tierCount) > 0 {
		fmt.Println()
		fmt.Println("LOD tiers:")
		tiers := make([]int, 0, len(tierCount))
		for t := range tierCount {
			tiers = append(tiers, t)
		}
		sort.Ints(tiers)
		for _, t := range tiers {
			fmt.Printf("  %-6d %d\n", t, tierCount[t])
		}
	}

	if !*check {
		return
	}

	fmt.Println()
	failed := 0
	for _, e := range c.List {
		if e.Image == "" {
			continue
		}
		if _, err := src.Load(context.Background(), e.Image); err != nil {
			fmt.Printf("  FAIL %-6s %s: %v\n", e.Key(), e.Image, err)
			failed++
		}
	}
	fmt.Printf("%d of %d images failed to load\n", failed, c.Len()-noImage)
	if failed > 0 {
		os.Exit(1)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N artworks (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gallerytool list <list.json> [pattern]")
		os.Exit(1)
	}

	c, _ := loadList(".", fs.Arg(0))

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, e := range c.List {
		if pattern != "" &&
			!strings.Contains(strings.ToLower(e.Title), pattern) &&
			!strings.Contains(strings.ToLower(e.Author), pattern) {
			continue
		}
		fmt.Printf("%-6s %-40s %s\n", e.Key(), e.Title, e.Author)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d artworks matched)\n", count)
	}
}

func cmdLODs(args []string) {
	fs := flag.NewFlagSet("lods", flag.ExitOnError)
	outDir := fs.String("out", "lods", "Directory to write scaled images to")
	tiersFlag := fs.String("tiers", "256,512,1024", "Comma separated tier sizes")
	prefix := fs.String("prefix", "", "URL prefix written into the list (default: -out)")
	root := fs.String("root", ".", "Root for relative image paths")
	quality := fs.Int("quality", 90, "JPEG quality")
	workers := fs.Int("workers", 4, "Parallel workers")
	output := fs.String("o", "", "Write the updated list here (default: stdout)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gallerytool lods [options] <list.json>")
		os.Exit(1)
	}

	tiers, err := parseTiers(*tiersFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *prefix == "" {
		*prefix = filepath.ToSlash(*outDir)
	}

	c, src := loadList(*root, fs.Arg(0))

	jobs := make([]lod.BakeJob, 0, c.Len())
	for _, e := range c.List {
		if e.Image != "" {
			jobs = append(jobs, lod.BakeJob{Key: e.Key(), URL: e.Image})
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	urls, err := lod.BakeAll(ctx, src, jobs, lod.BakeOptions{
		Tiers:       tiers,
		OutDir:      *outDir,
		Prefix:      *prefix,
		JPEGQuality: *quality,
		Workers:     *workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Baked %d artworks x %d tiers in %s\n",
		len(jobs), len(tiers), time.Since(start).Round(time.Millisecond))

	for i := range c.List {
		if u, ok := urls[c.List[i].Key()]; ok {
			c.List[i].LODs = u
		}
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := c.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseTiers(s string) ([]lod.Tier, error) {
	var tiers []lod.Tier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid tier %q", part)
		}
		tiers = append(tiers, lod.Tier(n))
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers given")
	}
	return tiers, nil
}
