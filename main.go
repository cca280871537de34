package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/kidandcat/softassert/pkg/config"
	"github.com/kidandcat/softassert/pkg/parser"
	"github.com/kidandcat/softassert/pkg/softassert"
	"github.com/kidandcat/softassert/pkg/softtest"
)

var (
	pass = color.New(color.FgGreen, color.Bold)
	fail = color.New(color.FgRed, color.Bold)
	info = color.New(color.FgYellow)
)

func main() {
	var (
		headless           = flag.Bool("headless", true, "Run browser in headless mode")
		timeout            = flag.Duration("timeout", 30*time.Second, "Per-operation browser timeout")
		failOnConsoleError = flag.Bool("fail-on-console-error", true, "Record console errors as failures")
		pattern            = flag.String("pattern", "*.test", "File pattern for test files")
		configFile         = flag.String("config", "", "Config file path")
		screenshotDir      = flag.String("screenshot-dir", "", "Screenshot directory")
		updateScreenshots  = flag.Bool("update-screenshots", false, "Update baseline screenshots")
		quiet              = flag.Bool("quiet", false, "Only print the summary, not every failure as it happens")
		noColor            = flag.Bool("no-color", false, "Disable coloured output")
	)

	flag.Parse()

	runnerConfig := &softtest.Config{
		Headless:           *headless,
		Timeout:            *timeout,
		FailOnConsoleError: *failOnConsoleError,
		ScreenshotDir:      *screenshotDir,
		UpdateScreenshots:  *updateScreenshots,
	}

	configPath := *configFile
	if configPath == "" {
		configPath = config.FindConfigFile(".")
	}

	if configPath != "" {
		fileConfig, err := config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file %s: %v", configPath, err)
		} else {
			fileConfig.Apply(runnerConfig, isFlagSet)
			if !isFlagSet("quiet") && fileConfig.Quiet != nil {
				*quiet = *fileConfig.Quiet
			}
			if !isFlagSet("no-color") && fileConfig.Color != nil {
				*noColor = !*fileConfig.Color
			}
		}
	}

	if *noColor {
		color.NoColor = true
	}
	if *quiet {
		runnerConfig.Sink = softassert.Discard
	} else {
		sink := softassert.NewLogSink(os.Stderr)
		sink.SetColor(!color.NoColor)
		runnerConfig.Sink = sink
	}

	testFiles, err := findTestFiles(*pattern, flag.Args())
	if err != nil {
		log.Fatal("Failed to find test files:", err)
	}

	if len(testFiles) == 0 {
		log.Fatal("No test files found")
	}

	runner := softtest.NewRunner(runnerConfig)

	p := parser.New()
	totalTests := 0
	for _, file := range testFiles {
		tests, err := p.ParseFile(file)
		if err != nil {
			log.Printf("Failed to parse %s: %v", file, err)
			continue
		}
		for _, test := range tests {
			runner.AddTest(test)
			totalTests++
		}
	}

	if totalTests == 0 {
		log.Fatal("No tests found")
	}

	if err := runner.Start(); err != nil {
		log.Fatal("Failed to start browser:", err)
	}
	defer runner.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down gracefully...")
		runner.Stop()
		os.Exit(130)
	}()

	info.Printf("Running %d tests from %d files...\n\n", totalTests, len(testFiles))

	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Start()

	resultsChan := make(chan softtest.TestResult)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for result := range resultsChan {
			s.Stop()
			printResult(result)
			s.Start()
		}
	}()

	results := runner.RunWithProgress(resultsChan)
	<-done
	s.Stop()

	failed := 0
	for _, result := range results {
		if !result.Passed {
			failed++
		}
	}

	fmt.Println()
	if failed > 0 {
		fail.Printf("%d of %d tests failed\n", failed, len(results))
		runner.Stop()
		os.Exit(1)
	}
	pass.Printf("All %d tests passed\n", len(results))
}

func printResult(result softtest.TestResult) {
	elapsed := result.Duration.Round(time.Millisecond)
	if result.Passed {
		fmt.Printf("%s %s (%s)\n", pass.Sprint("✓ PASS"), result.Name, elapsed)
		return
	}
	fmt.Printf("%s %s (%s)\n", fail.Sprint("✗ FAIL"), result.Name, elapsed)
	if result.Error != nil {
		for _, line := range strings.Split(result.Error.Error(), "\n") {
			fmt.Printf("  %s\n", fail.Sprint(line))
		}
	}
}

func findTestFiles(pattern string, args []string) ([]string, error) {
	if len(args) == 0 {
		return filepath.Glob(pattern)
	}

	var files []string
	for _, arg := range args {
		if strings.HasSuffix(arg, ".test") || strings.HasSuffix(arg, ".softassert") {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
