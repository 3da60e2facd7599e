// Command demo wires the cognitive orchestration core end-to-end and
// runs a handful of inputs through it. It is not a service: there is no
// network listener here — this is wiring and demonstration only.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/config"
	"cognitive-core/internal/orchestrator"
	"cognitive-core/internal/reasoning"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (defaults applied when empty)")
	flag.Parse()

	logger := log.New(os.Stdout, "cognitive-core: ", log.LstdFlags)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	orch := orchestrator.New(*cfg, clock.System{})
	if err := orch.Initialize(); err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	if err := orch.Start(); err != nil {
		logger.Fatalf("start: %v", err)
	}
	defer orch.Shutdown()

	ctx := context.Background()

	prompts := []string{
		"decide which option is most likely to succeed given the probability of failure",
		"infer whether X implies Y from the given premises",
		"solve this problem: how do I reduce request latency",
	}

	for _, p := range prompts {
		result, err := orch.ProcessInput(ctx, reasoning.Input{Text: p})
		if err != nil {
			logger.Printf("process_input failed: %v", err)
			continue
		}
		logger.Printf("input=%q confidence=%.2f uncertainty_label=%s backends=%d",
			p, result.Confidence, result.UncertaintyLabel, len(result.BackendsUsed))
	}

	status := orch.GetStatus()
	logger.Printf("final status: state=%s processed=%d learn_failures=%d", status.State, status.Processed, status.LearnFailures)

	sysMetrics := orch.GetMetrics()
	logger.Printf("metrics: ok=%d cancelled=%d learn_failures=%d last_confidence=%.2f",
		sysMetrics.Counters["process_input_ok"], sysMetrics.Counters["process_input_cancelled"],
		sysMetrics.Counters["learn_failures"], sysMetrics.Gauges["last_confidence"])
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}
