package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// Profile names.
const (
	CPU       = "cpu"
	Heap      = "heap"
	Allocs    = "allocs"
	Goroutine = "goroutine"
	Block     = "block"
	Mutex     = "mutex"
)

// DefaultDir is the default profile folder.
const DefaultDir = "."

// ErrUnknownProfile indicates a profile name outside [GetAllProfileStrings].
var ErrUnknownProfile = errors.New("unknown profile")

var allProfiles = []string{CPU, Heap, Allocs, Goroutine, Block, Mutex}

// GetAllProfileStrings returns the accepted profile names.
func GetAllProfileStrings() []string {
	return slices.Clone(allProfiles)
}

// Profiler writes the profiles selected by its [Config].
type Profiler struct {
	fs      afero.Fs
	cfg     *Config
	cpu     afero.File
	written []string
	started bool
}

// Start validates the configuration, creates the profile folder and starts
// CPU profiling when requested. It does nothing when no profile is selected.
func (p *Profiler) Start() error {
	if len(p.cfg.Profiles) == 0 {
		return nil
	}

	err := p.cfg.Validate()
	if err != nil {
		return err
	}

	err = p.fs.MkdirAll(p.cfg.Dir, 0o755)
	if err != nil {
		return fmt.Errorf("create profile folder: %w", err)
	}

	if p.enabled(Block) {
		runtime.SetBlockProfileRate(1)
	}

	if p.enabled(Mutex) {
		runtime.SetMutexProfileFraction(1)
	}

	if p.enabled(CPU) {
		f, err := p.fs.Create(p.path(CPU))
		if err != nil {
			p.resetRates()

			return fmt.Errorf("create cpu profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			_ = f.Close()
			p.resetRates()

			return fmt.Errorf("start cpu profile: %w", err)
		}

		p.cpu = f
	}

	p.written = nil
	p.started = true

	return nil
}

// Stop ends CPU profiling and writes the snapshot profiles. It attempts every
// profile and returns the combined errors. Stop without a successful Start
// does nothing.
func (p *Profiler) Stop() error {
	if !p.started {
		return nil
	}

	p.started = false

	var errs *multierror.Error

	if p.cpu != nil {
		pprof.StopCPUProfile()

		err := p.cpu.Close()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close cpu profile: %w", err))
		} else {
			p.record(p.path(CPU))
		}

		p.cpu = nil
	}

	for _, name := range p.cfg.Profiles {
		if name == CPU {
			continue
		}

		err := p.snapshot(name)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	p.resetRates()

	return errs.ErrorOrNil()
}

// Files returns the profile files written by the last [Profiler.Stop].
func (p *Profiler) Files() []string {
	return p.written
}

func (p *Profiler) snapshot(name string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	// Heap profiles report as of the last collection.
	if name == Heap || name == Allocs {
		runtime.GC()
	}

	path := p.path(name)

	f, err := p.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}

	err = prof.WriteTo(f, 0)
	if err != nil {
		_ = f.Close()

		return fmt.Errorf("write %s profile: %w", name, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close %s profile: %w", name, err)
	}

	p.record(path)

	return nil
}

func (p *Profiler) record(path string) {
	p.written = append(p.written, path)

	slog.Debug("wrote profile", slog.String("path", path))
}

func (p *Profiler) resetRates() {
	if p.enabled(Block) {
		runtime.SetBlockProfileRate(0)
	}

	if p.enabled(Mutex) {
		runtime.SetMutexProfileFraction(0)
	}
}

func (p *Profiler) enabled(name string) bool {
	return slices.Contains(p.cfg.Profiles, name)
}

func (p *Profiler) path(name string) string {
	return filepath.Join(p.cfg.Dir, name+".pprof")
}
