package provisioning

import (
	"time"
)

// Pipeline runs phases in order and stops at the first failure.
type Pipeline struct {
	Phases []Phase
}

// NewPipeline creates a pipeline from phases.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// Run executes every phase sequentially. A failure is returned as
// *ProvisioningError naming the phase; later phases do not run. Each phase
// is bounded by ctx.Timeouts.Stage when set.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d stages...", len(p.Phases))

	for i, phase := range p.Phases {
		if err := ctx.Err(); err != nil {
			return &ProvisioningError{Stage: phase.Name(), Err: err}
		}

		phaseStart := time.Now()
		LogPhaseStart(ctx.Observer, phase.Name())
		ctx.Observer.Progress(phase.Name(), i+1, len(p.Phases))

		phaseCtx, cancel := ctx.withStageTimeout()
		err := phase.Provision(phaseCtx)
		cancel()
		if err != nil {
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return &ProvisioningError{Stage: phase.Name(), Err: err}
		}

		LogPhaseComplete(ctx.Observer, phase.Name(), time.Since(phaseStart))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
