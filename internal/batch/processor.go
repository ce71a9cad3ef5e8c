package batch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"qr3d/internal/generator"
	"qr3d/internal/qrencode"
)

// Config holds the shared settings of a batch run.
type Config struct {
	OutputDir string
	Encoder   qrencode.Backend
	Workers   int
	// ProgressEvery is the progress log interval; zero means two seconds.
	ProgressEvery time.Duration
	Logger        *logrus.Logger
}

// Result holds the outcome of processing one model.
type Result struct {
	Name    string
	Input   string
	Success bool
	Error   string
	Dir     string
	Files   []string
}

// Run generates every model of f using a worker pool. Results keep the
// order of f.Models; a failed model does not stop the others.
func Run(cfg Config, gen *generator.Generator, f File) []Result {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	every := cfg.ProgressEvery
	if every <= 0 {
		every = 2 * time.Second
	}

	total := len(f.Models)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Infof("[%d/%d] %.1f models/sec", p, total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Worker pool
	modelChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range modelChan {
				results[idx] = processModel(cfg, gen, f, idx)
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range f.Models {
		modelChan <- i
	}
	close(modelChan)

	wg.Wait()
	close(done)

	return results
}

func processModel(cfg Config, gen *generator.Generator, f File, idx int) Result {
	m := f.Models[idx]
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("Model %d", idx+1)
	}

	cardCfg, err := f.Config(m)
	if err != nil {
		return Result{Name: name, Input: m.URL, Error: err.Error()}
	}

	res, err := gen.Generate(generator.Request{
		Input:     m.URL,
		Name:      m.Name,
		OutputDir: cfg.OutputDir,
		Encoder:   cfg.Encoder,
		Config:    cardCfg,
	})
	if err != nil {
		return Result{Name: name, Input: m.URL, Error: err.Error()}
	}

	return Result{
		Name:    name,
		Input:   m.URL,
		Success: true,
		Dir:     res.Dir,
		Files:   []string{res.ImagePath, res.MetadataPath, res.SCADPath, res.PreviewPath},
	}
}
