package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"slmwavefront/internal/models"
	"slmwavefront/pkg/config"
	"slmwavefront/pkg/correction"
	"slmwavefront/pkg/field"
	"slmwavefront/pkg/metrology"
	"slmwavefront/pkg/retrieval"
	"slmwavefront/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Measured focal-plane intensity image (PNG or JPEG)")
	configPath := flag.String("config", "slmwavefront.yaml", "Configuration file path")
	outputDir := flag.String("output-dir", "retrieval_results", "Directory for result images and plots")
	writeDefault := flag.Bool("write-default-config", false, "Write the default configuration file and exit")
	timeout := flag.Duration("timeout", 0, "Wall-clock budget for the retrieval loop (0 = none)")
	flag.Parse()

	if *writeDefault {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slmGrid, err := cfg.SLMGrid()
	if err != nil {
		log.Fatalf("Invalid optics configuration: %v", err)
	}
	convergence, err := cfg.Convergence()
	if err != nil {
		log.Fatalf("Invalid retrieval configuration: %v", err)
	}

	// Load the measured target
	frame, err := models.LoadFrame(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load measurement: %v", err)
	}
	if frame.Width != slmGrid.Nx || frame.Height != slmGrid.Ny {
		log.Fatalf("Measurement is %dx%d but the configured grid is %dx%d; resample the capture first",
			frame.Width, frame.Height, slmGrid.Nx, slmGrid.Ny)
	}
	target := frame.Intensity()

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("SLM WAVEFRONT PHASE RETRIEVAL")
		fmt.Println("================================")
		fmt.Printf("Measurement: %s (%dx%d)\n", frame.Filename, frame.Width, frame.Height)
		fmt.Printf("Wavelength: %.1f nm, focal length: %.1f mm\n",
			cfg.Optics.WavelengthNM, cfg.Optics.FocalLengthMM)
		fmt.Printf("Metric: %s, seed: %s, max iterations: %d\n",
			cfg.Retrieval.Metric, cfg.Retrieval.Seed, cfg.Retrieval.MaxIterations)
	}

	// Size the target aperture from beam metrology and null everything
	// outside it before handing the target to the engine.
	metrics, err := metrology.CentroidAndRadius(target)
	if err != nil {
		log.Fatalf("Beam metrology failed: %v", err)
	}
	focalGrid, err := slmGrid.FocalPlane(cfg.Wavelength(), cfg.FocalLength())
	if err != nil {
		log.Fatalf("Focal plane derivation failed: %v", err)
	}
	radius := cfg.Retrieval.ApertureRadiusFactor * metrics.RadiusX * focalGrid.PitchX
	centerX := (metrics.CentroidCol - float64(focalGrid.Nx/2)) * focalGrid.PitchX
	centerY := (metrics.CentroidRow - float64(focalGrid.Ny/2)) * focalGrid.PitchY
	targetMask := metrology.CircularMask(focalGrid, centerX, centerY, radius)
	maskedTarget, err := targetMask.ApplyIntensity(target)
	if err != nil {
		log.Fatalf("Failed to apply target aperture: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Printf("Beam centroid: (%.1f, %.1f) px, second-moment radius: %.1f x %.1f px\n",
			metrics.CentroidCol, metrics.CentroidRow, metrics.RadiusX, metrics.RadiusY)
	}

	// Modeled illumination at the SLM plane
	illumination, err := field.NewGaussianIntensity(slmGrid, cfg.BeamWaist())
	if err != nil {
		log.Fatalf("Failed to model illumination: %v", err)
	}

	engine, err := retrieval.NewEngine(slmGrid, convergence)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	fmt.Println("Starting phase retrieval...")
	startTime := time.Now()
	result, err := engine.Run(ctx, maskedTarget, illumination)
	if err != nil {
		log.Fatalf("Retrieval failed: %v", err)
	}
	elapsed := time.Since(startTime)

	fmt.Printf("\nRetrieval finished in %.2f seconds: %s after %d iterations\n",
		elapsed.Seconds(), result.Status, result.Iterations)
	if n := len(result.History); n > 0 {
		fmt.Printf("Fidelity metric: first %.6g, last %.6g\n", result.History[0], result.History[n-1])
	}

	// Correction pattern, restricted to the illuminated aperture
	slmMask := metrology.CircularMask(slmGrid, 0, 0, cfg.Retrieval.ApertureRadiusFactor*cfg.BeamWaist())
	pattern, err := correction.Synthesize(result.SLMField, slmGrid, convergence.Seed, slmMask)
	if err != nil {
		log.Fatalf("Correction synthesis failed: %v", err)
	}

	diag := retrieval.WavefrontDiagnostics(result.FocusField, cfg.Wavelength(), 0.25)
	fmt.Printf("\nDiagnostics:\n")
	fmt.Printf("  RMS wavefront error: %.2f nm (%.4f waves)\n",
		diag.RMSWavefront*1e9, diag.RMSWavefront/cfg.Wavelength())
	fmt.Printf("  Estimated Strehl ratio: %.4f\n", diag.Strehl)
	fmt.Printf("  Usable correction samples: %d of %d\n", pattern.ValidCount(), len(pattern.Phase))

	// Write outputs
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	patternPath := filepath.Join(*outputDir, "correction_pattern.png")
	if err := visualization.SavePhaseImage(pattern, patternPath); err != nil {
		log.Fatalf("Failed to save correction pattern: %v", err)
	}
	fmt.Printf("\nCorrection pattern saved to: %s\n", patternPath)

	if cfg.Output.SaveConvergencePlot {
		label := "normalized MSE"
		if convergence.Metric == retrieval.MetricCorrelation {
			label = "correlation magnitude"
		}
		plotPath := filepath.Join(*outputDir, "convergence.png")
		if err := visualization.SaveConvergencePlot(result.History, label, plotPath); err != nil {
			log.Printf("Warning: Failed to save convergence plot: %v", err)
		} else {
			fmt.Printf("Convergence plot saved to: %s\n", plotPath)
		}
	}
}
