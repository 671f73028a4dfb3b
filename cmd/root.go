package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/schedsim/schedsim/shell"
	"github.com/schedsim/schedsim/sim"
	"github.com/schedsim/schedsim/sim/workload"
)

var (
	logLevel       string // Log verbosity level
	configPath     string // Optional YAML sim config
	programCatalog string // Optional YAML program catalog overlay
	seed           int64  // Seed for program behavior draws
	cycles         int    // Number of scheduling cycles to simulate
	procs          int    // Extra random-program processes to create
	depthsOut      string // Optional CSV output for queue depth samples
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "schedsim",
	Short: "Teaching OS simulator with an MLFQ CPU scheduler",
}

// setupLogging configures logrus from the --log flag.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadConfig resolves the effective SimConfig from file and flag overrides.
func loadConfig(cmd *cobra.Command) *sim.SimConfig {
	cfg := sim.DefaultSimConfig()
	if configPath != "" {
		loaded, err := sim.LoadSimConfig(configPath)
		if err != nil {
			logrus.Fatalf("unable to read sim config; %v", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("cycles") {
		cfg.Cycles = cycles
	}
	return cfg
}

// loadPrograms builds the program registry, applying any overlay.
func loadPrograms(cfg *sim.SimConfig) *workload.Registry {
	registry := workload.NewRegistry()
	overlay := cfg.ProgramCatalog
	if programCatalog != "" {
		overlay = programCatalog
	}
	if overlay != "" {
		if err := registry.ApplyOverlay(overlay); err != nil {
			logrus.Fatalf("unable to load program catalog; %v", err)
		}
	}
	return registry
}

// populateWorkload creates the configured process set on a booted kernel.
func populateWorkload(kernel *sim.Kernel, cfg *sim.SimConfig) {
	for _, spec := range cfg.Workload {
		count := spec.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if spec.Program == "" {
				if _, err := kernel.Fork(sim.InitPID); err != nil {
					logrus.Fatalf("workload fork failed: %v", err)
				}
				continue
			}
			pid, err := kernel.Exec(sim.InitPID, spec.Program)
			if err != nil {
				logrus.Fatalf("workload exec failed: %v", err)
			}
			if spec.Queue != nil {
				kernel.Scheduler.AddToQueue(pid, *spec.Queue)
			}
		}
	}

	if procs > 0 {
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)).ForSubsystem(sim.SubsystemWorkload)
		names := kernel.Programs.Names()
		for i := 0; i < procs; i++ {
			name := names[rng.Intn(len(names))]
			if _, err := kernel.Exec(sim.InitPID, name); err != nil {
				logrus.Fatalf("workload exec failed: %v", err)
			}
		}
	}
}

// runCmd executes a batch simulation using parameters from config and flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch MLFQ scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg := loadConfig(cmd)
		registry := loadPrograms(cfg)

		logrus.Infof("Starting simulation: quanta=%v, boost every %d ticks, %d cycles, seed=%d",
			cfg.Quanta, cfg.BoostInterval, cfg.Cycles, cfg.Seed)

		kernel := sim.NewKernel(cfg, registry)
		kernel.Boot()
		populateWorkload(kernel, cfg)

		results := kernel.RunCycles(cfg.Cycles)
		logrus.Infof("Simulation complete: %d of %d cycles dispatched a process", len(results), cfg.Cycles)

		fmt.Print(kernel.Stats.SummaryReport())

		if depthsOut != "" {
			if err := kernel.Stats.SaveQueueDepths(depthsOut); err != nil {
				logrus.Fatalf("unable to write queue depth samples; %v", err)
			}
		}
	},
}

// shellCmd starts the interactive shell over a fresh kernel
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive OS simulator shell",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg := loadConfig(cmd)
		registry := loadPrograms(cfg)

		sh := shell.New(sim.NewKernel(cfg, registry))
		fmt.Println("schedsim interactive shell. Type 'help' for commands.")

		scanner := bufio.NewScanner(os.Stdin)
		for sh.IsRunning() {
			fmt.Print("schedsim> ")
			if !scanner.Scan() {
				break
			}
			command, ok := shell.ParseCommand(scanner.Text())
			if !ok {
				if scanner.Text() != "" {
					fmt.Println("Unknown command. Type 'help' for the command list.")
				}
				continue
			}
			fmt.Println(sh.Execute(command))
		}
		if err := scanner.Err(); err != nil {
			logrus.Fatalf("reading input: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, shellCmd} {
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&configPath, "config", "", "Path to YAML simulation config")
		c.Flags().StringVar(&programCatalog, "programs", "", "Path to YAML program catalog overlay")
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for program behavior draws")
	}

	runCmd.Flags().IntVar(&cycles, "cycles", 25, "Number of scheduling cycles to simulate")
	runCmd.Flags().IntVar(&procs, "procs", 0, "Extra processes with randomly drawn programs")
	runCmd.Flags().StringVar(&depthsOut, "queue-depths-out", "", "Write queue depth samples to this CSV file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(shellCmd)
}
