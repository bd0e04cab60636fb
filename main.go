package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"fixwav/fixer"
	"fixwav/handlers"
	"fixwav/models"
)

const VERSION = "1.0.0"

var (
	sourcePath  string
	destPath    string
	copyAll     bool
	corruptOnly bool
	verify      bool
	legacy      bool
	maxFrames   int
	corruptLog  string
	cleanLog    string
	serve       bool
	version     bool
)

func init() {
	flag.StringVar(&sourcePath, "s", "", "Source directory (required)")
	flag.StringVar(&sourcePath, "source", "", "Source directory (required)")
	flag.StringVar(&destPath, "d", "", "Destination directory, must not exist (required)")
	flag.StringVar(&destPath, "destination", "", "Destination directory, must not exist (required)")
	flag.BoolVar(&copyAll, "a", false, "Copy every file, repairing corrupt WAV files")
	flag.BoolVar(&copyAll, "all", false, "Copy every file, repairing corrupt WAV files")
	flag.BoolVar(&corruptOnly, "c", false, "Only write repaired WAV files")
	flag.BoolVar(&corruptOnly, "corrupt", false, "Only write repaired WAV files")
	flag.BoolVar(&verify, "verify", false, "Re-read every repaired file and compare its audio with the source")
	flag.BoolVar(&legacy, "legacy", false, "Write headers laid out like earlier fixwav releases")
	flag.IntVar(&maxFrames, "max-frames", models.DefaultMaxFrames, "Maximum number of ID3 frames to skip per file")
	flag.StringVar(&corruptLog, "corrupt-log", "corrupt.log", "Log of corrupt files")
	flag.StringVar(&cleanLog, "clean-log", "clean.log", "Log of clean files")
	flag.BoolVar(&serve, "serve", false, "Run the HTTP repair API instead of a batch")
	flag.BoolVar(&version, "version", false, "Display version information")
}

func main() {
	flag.Parse()

	if version {
		fmt.Printf("fixwav version %s\n", VERSION)
		os.Exit(0)
	}

	if serve {
		runServer()
		return
	}

	if sourcePath == "" || destPath == "" {
		fmt.Println("Error: source and destination are required.")
		printUsage()
		os.Exit(1)
	}
	if copyAll == corruptOnly {
		fmt.Println("Error: exactly one of -a/-all or -c/-corrupt is required.")
		printUsage()
		os.Exit(1)
	}

	corruptFile, err := openLog(corruptLog)
	if err != nil {
		log.Fatalf("Error opening corrupt log: %v", err)
	}
	defer corruptFile.Close()

	cleanFile, err := openLog(cleanLog)
	if err != nil {
		log.Fatalf("Error opening clean log: %v", err)
	}
	defer cleanFile.Close()

	layout := models.LayoutStandard
	if legacy {
		layout = models.LayoutLegacy
	}

	f := fixer.NewFixer(fixer.Config{
		Source:      sourcePath,
		Destination: destPath,
		CopyAll:     copyAll,
		Verify:      verify,
		Options:     models.RepairOptions{Layout: layout, MaxFrames: maxFrames},
	}, fixer.Sinks{
		Corrupt:  corruptFile,
		Clean:    cleanFile,
		Progress: os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := f.Run(ctx)
	if err != nil {
		fmt.Println(capitalize(err.Error()))
		if summary == nil {
			os.Exit(1)
		}
	}

	fmt.Printf("Processed %d files: %d repaired, %d copied, %d skipped, %d failed. Duration: %.2fs\n",
		summary.Total, summary.Repaired, summary.Copied, summary.Skipped, summary.Failed, summary.Duration.Seconds())
	if err != nil {
		os.Exit(1)
	}
}

func openLog(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Ignoring invalid %s=%q", name, v)
		return def
	}
	return n
}

func runServer() {
	maxUploadMB := envInt("MAX_UPLOAD_MB", 32)

	var origins []string
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router := handlers.NewRouter(handlers.NewRepairHandler(int64(maxUploadMB)<<20, maxFrames), origins)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/repair  - Repair a corrupt WAV upload (returns the fixed WAV)")
	log.Printf("  POST /api/v1/inspect - Report the RIFF/ID3 layout of a WAV upload")
	log.Printf("  GET  /api/v1/health  - Health check")
	log.Printf("Upload limit: %d MB", maxUploadMB)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printUsage() {
	fmt.Println("Usage: fixwav -s <source> -d <destination> (-a | -c) [options] or fixwav -serve")
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println("\nExamples:")
	fmt.Println("  fixwav -s Recordings -d Recordings-fixed -a           # Copy everything, repairing corrupt WAVs")
	fmt.Println("  fixwav -s Recordings -d Repaired -c -verify           # Only write repaired WAVs and check them")
	fmt.Println("  PORT=9000 fixwav -serve                               # Run the repair API")
}
