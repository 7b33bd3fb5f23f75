package report

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/opioid-eda/internal/config"
	"github.com/rgehrsitz/opioid-eda/internal/domain"
	"github.com/rgehrsitz/opioid-eda/internal/loader"
	"github.com/rgehrsitz/opioid-eda/internal/logging"
	"github.com/rgehrsitz/opioid-eda/internal/states"
)

// Engine orchestrates a report run: load, decode, compute, assemble
type Engine struct {
	Resolver  *states.Resolver
	Decoder   *loader.Decoder
	Assembler *Assembler
	Logger    logging.Logger
}

// NewEngine creates an engine over the built-in state reference
func NewEngine(logger logging.Logger) *Engine {
	resolver := states.NewResolver()
	return &Engine{
		Resolver:  resolver,
		Decoder:   loader.NewDecoder(resolver, logger),
		Assembler: NewAssembler(resolver, logger),
		Logger:    logging.OrNop(logger),
	}
}

// Run produces the report described by cfg. An unreadable source or a
// missing required column aborts the run; excluded rows only show up in
// the report's diagnostics.
func (e *Engine) Run(ctx context.Context, cfg *config.Configuration) (*domain.Report, error) {
	earlier, later, err := cfg.Analysis.Window()
	if err != nil {
		return nil, err
	}

	in, err := e.Load(ctx, cfg.Sources)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return e.Assembler.Assemble(in, Options{
		Title:        cfg.Title,
		CauseOfDeath: cfg.Analysis.CauseOfDeath,
		PlanType:     cfg.Analysis.PlanType,
		EarlierDate:  earlier,
		LaterDate:    later,
	}), nil
}

// Load reads and decodes the four sources concurrently. The first fatal
// error cancels the others.
func (e *Engine) Load(ctx context.Context, src config.Sources) (Inputs, error) {
	var (
		in    Inputs
		stats [4]domain.SourceStats
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := open(ctx, src.Prescribing.Source)
		if err != nil {
			return err
		}
		in.Prescribing, stats[0], err = e.Decoder.Prescribing(t, src.Prescribing.Columns)
		return err
	})
	g.Go(func() error {
		t, err := open(ctx, src.Overdose.Source)
		if err != nil {
			return err
		}
		in.Overdose, stats[1], err = e.Decoder.Overdose(t, src.Overdose.Columns)
		return err
	})
	g.Go(func() error {
		t, err := open(ctx, src.Providers.Source)
		if err != nil {
			return err
		}
		in.Providers, stats[2], err = e.Decoder.Providers(t, src.Providers.Columns)
		return err
	})
	g.Go(func() error {
		t, err := open(ctx, src.Population.Source)
		if err != nil {
			return err
		}
		in.Population, stats[3], err = e.Decoder.Population(t, src.Population.Columns)
		return err
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}

	in.Stats = stats[:]
	for _, st := range in.Stats {
		e.Logger.Infof("%s: %d rows, %d loaded, %d dropped, %d unresolved states",
			st.Source, st.Rows, st.Loaded, st.Dropped, st.UnresolvedKeys)
	}
	return in, nil
}

func open(ctx context.Context, src config.Source) (*loader.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.Open(src.Path, src.Options())
}
