// Package pipeline owns the single-shot analysis state machine. A controller
// sequences reading, symbol retrieval, architecture building, metric
// computation, sorting, and layout; every transition is published to
// observers through a serialized snapshot plus broadcast channels.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/archmap-dev/archmap/internal/analyze"
	"github.com/archmap-dev/archmap/internal/layout"
	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/source"
)

// Reader loads the project folder tree from disk.
type Reader interface {
	Read(ctx context.Context, loc source.ProjectLocation) (*source.Folder, error)
}

// Provider supplies symbols and references for the files of a project.
// Retrieval failures may be partial: a provider that degrades returns nil
// and leaves the missing data out, and the architecture degrades gracefully.
type Provider interface {
	Connect(ctx context.Context, loc source.ProjectLocation) error
	RetrieveSymbols(ctx context.Context, project *source.Folder) error
	RetrieveReferences(ctx context.Context, project *source.Folder) error
}

// Options tune one pipeline run.
type Options struct {
	Logger *slog.Logger
	Layout layout.Constants
	Filter layout.Filter
	Width  float64
	Height float64
}

// Result carries the finished architecture model.
type Result struct {
	Tree *model.Tree
	View ViewModel
}

// Controller drives one analysis run. It is the sole writer of the artifact
// tree; observers only ever see the tree once the state reaches Ready.
type Controller struct {
	loc      source.ProjectLocation
	reader   Reader
	provider Provider
	opts     Options
	log      *slog.Logger

	mu      sync.RWMutex
	state   State
	subs    map[int]chan State
	nextSub int
}

// New creates a controller in the Located state.
func New(loc source.ProjectLocation, reader Reader, provider Provider, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 768
	}
	if opts.Filter == nil {
		opts.Filter = layout.ShowAll
	}
	if (opts.Layout == layout.Constants{}) {
		opts.Layout = layout.DefaultConstants()
	}
	return &Controller{
		loc:      loc,
		reader:   reader,
		provider: provider,
		opts:     opts,
		log:      logger.With("run", uuid.NewString()),
		state:    State{Phase: PhaseLocated},
		subs:     make(map[int]chan State),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers an observer. Every published transition is delivered
// to the returned channel; slow observers drop intermediate snapshots rather
// than blocking the pipeline. The cancel function unregisters the observer.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 16)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller) publish(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	for _, sub := range c.subs {
		select {
		case sub <- s:
		default:
		}
	}
}

// Run executes the pipeline. It can be called once per controller; the
// caller restarts by constructing a new controller. Cancelling the context
// at any suspension point transitions to Failed("cancelled").
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	fail := func(err error) (*Result, error) {
		msg := err.Error()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			msg = "cancelled"
		}
		c.publish(State{Phase: PhaseFailed, Message: msg})
		return nil, err
	}

	// retrieve: folder, server, symbols, references
	c.publish(State{Phase: PhaseRetrievingData, Step: StepReadFolder})
	project, err := c.reader.Read(ctx, c.loc)
	if err != nil {
		return fail(err)
	}
	c.log.Info("project read", "stage", StepReadFolder.String(), "files", project.CountFiles())

	c.publish(State{Phase: PhaseRetrievingData, Step: StepConnectServer})
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := c.provider.Connect(ctx, c.loc); err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		// degraded: continue without a working provider
		c.log.Warn("symbol provider unavailable", "stage", StepConnectServer.String(), "cause", err)
	}

	c.publish(State{Phase: PhaseRetrievingData, Step: StepRetrieveSymbols})
	if err := c.provider.RetrieveSymbols(ctx, project); err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		c.log.Warn("symbol retrieval incomplete", "stage", StepRetrieveSymbols.String(), "cause", err)
	}

	c.publish(State{Phase: PhaseRetrievingData, Step: StepRetrieveReferences})
	if err := c.provider.RetrieveReferences(ctx, project); err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		c.log.Warn("reference retrieval incomplete", "stage", StepRetrieveReferences.String(), "cause", err)
	}

	c.publish(State{Phase: PhaseDataReady})
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// analyze: build, lift, metrics, sort, layout, view models
	c.publish(State{Phase: PhaseAnalyzing, Step: StepBuildArchitecture})
	tree, index, err := analyze.Build(project)
	if err != nil {
		return fail(fmt.Errorf("build architecture: %w", err))
	}

	c.publish(State{Phase: PhaseAnalyzing, Step: StepLiftCrossScope})
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := analyze.Lift(tree, index, project); err != nil {
		return fail(fmt.Errorf("lift cross-scope references: %w", err))
	}
	index = nil // side table is dropped once lifting finished

	c.publish(State{Phase: PhaseAnalyzing, Step: StepComputeMetrics})
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := analyze.ComputeMetrics(tree); err != nil {
		return fail(fmt.Errorf("compute metrics: %w", err))
	}

	c.publish(State{Phase: PhaseAnalyzing, Step: StepSort})
	analyze.Sort(tree)

	c.publish(State{Phase: PhaseAnalyzing, Step: StepLayout})
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	layout.Apply(tree, c.opts.Width, c.opts.Height, c.opts.Filter, c.opts.Layout)

	c.publish(State{Phase: PhaseAnalyzing, Step: StepBuildViewModels})
	view := buildViewModel(tree, c.opts.Width, c.opts.Height)
	c.log.Info("analysis complete",
		"stage", StepBuildViewModels.String(),
		"artifacts", view.Artifacts,
		"edges", view.Edges,
		"inCycles", view.InCycles)

	c.publish(State{Phase: PhaseReady, Root: tree, View: &view})
	return &Result{Tree: tree, View: view}, nil
}

func buildViewModel(tree *model.Tree, width, height float64) ViewModel {
	view := ViewModel{
		RootName: tree.Get(tree.Root()).Name,
		Width:    width,
		Height:   height,
	}
	tree.WalkPre(tree.Root(), func(a *model.Artifact) bool {
		view.Artifacts++
		switch a.Kind {
		case model.KindFolder:
			view.Folders++
		case model.KindFile:
			view.Files++
		case model.KindSymbol:
			view.Symbols++
		}
		view.Edges += a.Graph.EdgeCount()
		if a.Metrics.InCycle {
			view.InCycles++
		}
		return true
	})
	return view
}
