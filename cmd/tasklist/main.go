// Task list generator: prints the project task list as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"malayalees/src/core/tasks"
)

type output struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Phase       string               `json:"phase,omitempty"`
	Count       int                  `json:"count"`
	Summary     map[tasks.Status]int `json:"summary"`
	Tasks       []tasks.Task         `json:"tasks"`
}

func main() {
	var (
		phase  = flag.Int("phase", 0, "Only tasks of this phase (1-5, 0 = all)")
		status = flag.String("status", "", "Only tasks with this status: todo, in_progress, done")
		pretty = flag.Bool("pretty", false, "Indent the JSON output")
	)
	flag.Parse()

	if err := run(os.Stdout, *phase, *status, *pretty); err != nil {
		log.Printf("tasklist: %v", err)
		os.Exit(1)
	}
}

func run(w io.Writer, phase int, status string, pretty bool) error {
	if _, ok := tasks.Phases[phase]; phase != 0 && !ok {
		return fmt.Errorf("unknown phase %d", phase)
	}

	var st tasks.Status
	if status != "" {
		parsed, err := tasks.ParseStatus(status)
		if err != nil {
			return err
		}
		st = parsed
	}

	list := tasks.Filter(tasks.All(), phase, st)
	out := output{
		GeneratedAt: time.Now().UTC(),
		Phase:       tasks.Phases[phase],
		Count:       len(list),
		Summary:     tasks.Summary(list),
		Tasks:       list,
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
