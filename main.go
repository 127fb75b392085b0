package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lagleki/books/internal/cli"
	"github.com/lagleki/books/internal/config"
	"github.com/lagleki/books/internal/site"
)

const configFile = "library.toml"

func main() {
	// Define subcommands
	buildCmd := flag.NewFlagSet("build", flag.ExitOnError)
	buildContent := buildCmd.String("content", "", "Content root directory")
	buildDest := buildCmd.String("dest-dir", "", "Destination directory for build")
	buildVerbose := buildCmd.Bool("verbose", false, "Enable verbose output")

	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	initName := initCmd.String("name", "", "Library directory name (or pass as positional)")
	initTitle := initCmd.String("title", "", "Library title (defaults to name)")
	initContent := initCmd.String("content", "data", "Content directory")
	initBuildDir := initCmd.String("build-dir", "docs", "Build output directory")
	initYes := initCmd.Bool("yes", false, "Skip interactive prompts and use provided/default values")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	servePort := serveCmd.Int("port", 3000, "Port to serve on")
	serveHost := serveCmd.String("hostname", "127.0.0.1", "Hostname to bind to")
	serveOpen := serveCmd.Bool("open", false, "Open in browser")
	serveDest := serveCmd.String("dest-dir", "", "Destination directory for build")
	serveVerbose := serveCmd.Bool("verbose", false, "Enable verbose output")

	cleanCmd := flag.NewFlagSet("clean", flag.ExitOnError)
	cleanDest := cleanCmd.String("dest-dir", "", "Destination directory to clean")

	if len(os.Args) < 2 {
		fmt.Println("Usage: books [command]")
		fmt.Println("Commands:")
		fmt.Println("  build      Build the library site")
		fmt.Println("  init       Initialize a new library")
		fmt.Println("  serve      Serve the site with live reload")
		fmt.Println("  clean      Clean the build directory")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		buildCmd.Parse(os.Args[2:])
		handleBuild(*buildContent, *buildDest, *buildVerbose)

	case "init":
		initCmd.Parse(os.Args[2:])
		handleInit(initCmd, *initName, *initTitle, *initContent, *initBuildDir, *initYes)

	case "serve":
		serveCmd.Parse(os.Args[2:])
		handleServe(*serveHost, *servePort, *serveOpen, *serveDest, *serveVerbose)

	case "clean":
		cleanCmd.Parse(os.Args[2:])
		handleClean(*cleanDest)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

// loadConfig loads library.toml, falling back to defaults when absent
func loadConfig(contentOverride, destOverride string) *config.Config {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		log.Printf("Warning: could not load config file: %v. Using defaults.", err)
		cfg = config.NewDefaultConfig()
	}
	if contentOverride != "" {
		cfg.Library.Content = contentOverride
	}
	if destOverride != "" {
		cfg.Build.BuildDir = destOverride
	}
	return cfg
}

func handleBuild(contentDir, destDir string, verbose bool) {
	cfg := loadConfig(contentDir, destDir)

	fmt.Printf("Building library: %s\n", cfg.Library.Title)
	fmt.Printf("Rendering to: %s\n", cfg.Build.BuildDir)

	builder := site.NewBuilder(cfg, embeddedAssets)
	builder.SetVerbose(verbose)

	result, err := builder.Build()
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	fmt.Printf("Built %d books, %d pages to %s\n", result.Books, result.Pages, cfg.Build.BuildDir)
}

func handleInit(initCmd *flag.FlagSet, name, title, content, buildDir string, yes bool) {
	// Determine name: prefer positional arg if present, then --name, else default
	if name == "" {
		if initCmd.NArg() >= 1 {
			name = initCmd.Arg(0)
		} else {
			name = "my-library"
		}
	}

	fmt.Printf("Initializing new library: %s\n", name)

	opts := cli.InitOptions{
		Name:       name,
		Title:      title,
		ContentDir: content,
		BuildDir:   buildDir,
	}

	if !yes {
		cli.FillInitOptionsInteractive(&opts)
	}

	if err := cli.Init(opts); err != nil {
		log.Fatalf("Failed to initialize library: %v", err)
	}

	fmt.Printf("\nSuccessfully created library in '%s'\n", name)
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", name)
	fmt.Println("  books build     # build the site")
	fmt.Println("  books serve     # serve locally with live reload")
}

// handleServe builds the site, serves it with live reload, and rebuilds on changes.
func handleServe(host string, port int, open bool, destOverride string, verbose bool) {
	addr := fmt.Sprintf("%s:%d", host, port)

	cfg := loadConfig("", destOverride)
	outDir := cfg.Build.BuildDir

	// Initial build
	if err := buildWithLiveReload(cfg, "/__livereload", verbose); err != nil {
		log.Fatalf("Initial build failed: %v", err)
	}

	// Live reload broker (SSE)
	broker := newSSEBroker()

	mux := http.NewServeMux()
	mux.HandleFunc("/__livereload", func(w http.ResponseWriter, r *http.Request) {
		broker.serveSSE(w, r)
	})
	// Static files from the build directory
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		upath := r.URL.Path
		if strings.HasSuffix(upath, "/") {
			upath = upath + "index.html"
		}
		if upath == "/" {
			upath = "/index.html"
		}
		// Prevent path traversal
		upath = filepath.Clean(upath)
		target := filepath.Join(outDir, upath)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(outDir)) {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
			http.ServeFile(w, r, target)
			return
		}
		http.NotFound(w, r)
	})

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("Serving on http://%s\n", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	if open {
		go func() {
			url := fmt.Sprintf("http://%s", addr)
			time.Sleep(300 * time.Millisecond)
			_ = openBrowser(url)
		}()
	}

	// Watch and rebuild
	watchPaths := []string{configFile, cfg.Library.Content}
	watchPaths = append(watchPaths, cfg.Build.ExtraWatchDirs...)
	debounce := 150 * time.Millisecond
	var lastBuild time.Time

	lastHash, _ := snapshotModHash(watchPaths, outDir)

	for {
		time.Sleep(300 * time.Millisecond)
		hash, err := snapshotModHash(watchPaths, outDir)
		if err != nil {
			log.Printf("watch error: %v", err)
			continue
		}
		if hash == lastHash || time.Since(lastBuild) < debounce {
			continue
		}
		log.Println("Change detected, rebuilding...")
		freshCfg := loadConfig("", destOverride)
		if err := buildWithLiveReload(freshCfg, "/__livereload", verbose); err != nil {
			log.Printf("Build failed: %v", err)
		} else {
			broker.broadcast("reload")
			log.Println("Rebuilt. Reload signal sent.")
		}
		lastHash = hash
		lastBuild = time.Now()
	}
}

// buildWithLiveReload runs a build with the SSE client injected into pages
func buildWithLiveReload(cfg *config.Config, liveReloadPath string, verbose bool) error {
	builder := site.NewBuilder(cfg, embeddedAssets)
	builder.SetVerbose(verbose)
	builder.SetLiveReload(liveReloadPath)
	if _, err := builder.Build(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// snapshotModHash walks provided paths and returns a coarse hash based on mtimes and sizes.
func snapshotModHash(paths []string, outDir string) (string, error) {
	outClean := filepath.Clean(outDir)
	var b strings.Builder
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			// If path doesn't exist, skip
			continue
		}
		if info.IsDir() {
			filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return nil
				}
				if info.IsDir() {
					return nil
				}
				// Ignore the build output to avoid rebuild loops
				if strings.HasPrefix(filepath.Clean(path), outClean+string(os.PathSeparator)) {
					return nil
				}
				fmt.Fprintf(&b, "%s|%d|%d\n", path, info.ModTime().UnixNano(), info.Size())
				return nil
			})
		} else {
			fmt.Fprintf(&b, "%s|%d|%d\n", p, info.ModTime().UnixNano(), info.Size())
		}
	}
	return b.String(), nil
}

// openBrowser attempts to open the provided URL in a browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// SSE broker for simple live reload.
type sseBroker struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func newSSEBroker() *sseBroker {
	return &sseBroker{clients: make(map[chan string]struct{})}
}

func (b *sseBroker) serveSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan string, 1)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	// Heartbeat to keep connection alive
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	fmt.Fprintf(w, ":ok\n\n")
	flusher.Flush()

	defer func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(w, ":hb\n\n")
			flusher.Flush()
		case msg := <-ch:
			fmt.Fprintf(w, "event: reload\n")
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (b *sseBroker) broadcast(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func handleClean(destOverride string) {
	cfg := loadConfig("", destOverride)
	outDir := cfg.Build.BuildDir

	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		fmt.Printf("Nothing to clean; directory '%s' does not exist.\n", outDir)
		return
	}

	// Summarize contents
	var files, dirs int
	var bytes int64
	filepath.Walk(outDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != outDir {
				dirs++
			}
			return nil
		}
		files++
		bytes += info.Size()
		return nil
	})

	if err := os.RemoveAll(outDir); err != nil {
		log.Fatalf("Failed to remove '%s': %v", outDir, err)
	}
	fmt.Printf("Removed %d files, %d directories, %s from '%s'.\n", files, dirs, humanBytes(bytes), outDir)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	val := float64(n) / float64(div)
	suffix := []string{"KiB", "MiB", "GiB", "TiB"}
	if exp >= len(suffix) {
		return fmt.Sprintf("%.1f PiB", val/float64(unit))
	}
	return fmt.Sprintf("%.1f %s", val, suffix[exp])
}
