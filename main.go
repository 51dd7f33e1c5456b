package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"audiodex/cmd"
	"audiodex/config"
	"audiodex/services"
	"audiodex/tui"
	"audiodex/types"

	"github.com/schollz/progressbar/v3"
)

func main() {
	var (
		server  bool
		scan    bool
		port    int
		library string
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.BoolVar(&scan, "scan", false, "Scan the library once and print the results")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.StringVar(&library, "library", "", "Media library location (overrides AUDIODEX_LIBRARY)")
	flag.Parse()

	if library != "" {
		os.Setenv("AUDIODEX_LIBRARY", library)
	}

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if scan {
		runScan()
		return
	}

	// Default: interactive list browser
	if err := tui.Run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runScan performs a single scan and prints the qualifying entries.
func runScan() {
	libraryLocation := config.GetLibraryLocation()

	gate := services.FSGate{Root: libraryLocation}
	if decision := <-gate.Request(context.Background()); decision != types.Granted {
		log.Fatalf("Media library %s is not readable", libraryLocation)
	}

	index := services.NewFSIndex(libraryLocation)
	scanner := services.NewScanner(index, config.GetMinDurationMS())

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Scanning "+libraryLocation),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
	)

	lastExamined := 0
	scanner.OnRow = func(examined, found int) {
		bar.Add(examined - lastExamined)
		lastExamined = examined
	}

	entries, err := scanner.Scan(context.Background())
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No audio files found. Ensure you have MP3s in your music folder.")
		return
	}

	for _, entry := range entries {
		fmt.Printf("%s — %s  [%s]  %s\n",
			entry.Artist, entry.Title, formatDuration(entry.Duration), entry.Locator)
	}
	fmt.Printf("\n%d audio files\n", len(entries))
}

// formatDuration renders milliseconds as mm:ss.
func formatDuration(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
