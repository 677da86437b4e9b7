// Package sim drives a network to a fixed point, one propagation step at a
// time, writing a snapshot after every step.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/gustycube/netspread/internal/health"
	"github.com/gustycube/netspread/internal/metrics"
	"github.com/gustycube/netspread/internal/network"
	"github.com/gustycube/netspread/internal/rate"
	"github.com/gustycube/netspread/internal/telemetry"
	"github.com/gustycube/netspread/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Outcome is why a run stopped.
type Outcome string

const (
	// OutcomeAllInfected means every computer ended up infected.
	OutcomeAllInfected Outcome = "all_infected"
	// OutcomeNoneInfected means nothing was infected to begin with.
	OutcomeNoneInfected Outcome = "none_infected"
	// OutcomeContained means susceptible computers remain but no infected
	// computer has an edge that could still reach one.
	OutcomeContained Outcome = "contained"
	// OutcomeStepLimit means MaxSteps ran out first.
	OutcomeStepLimit Outcome = "step_limit"
	// OutcomeCancelled means the context ended the run.
	OutcomeCancelled Outcome = "cancelled"
)

// Sink receives one snapshot per printed state.
type Sink interface {
	WriteSnapshot(types.Snapshot) error
}

// Options configure a Simulator.
type Options struct {
	RunID string
	// MaxSteps caps propagation steps; zero means no cap.
	MaxSteps int
	// StepRate paces steps per second; zero runs unthrottled.
	StepRate float64
}

// Result summarises a finished run.
type Result struct {
	RunID    string  `json:"run_id"`
	Steps    int     `json:"steps"`
	Outcome  Outcome `json:"outcome"`
	Infected int     `json:"infected"`
	Total    int     `json:"total"`
}

type Simulator struct {
	opts  Options
	rnd   network.Source
	out   Sink
	pacer *rate.Pacer
	log   *zap.SugaredLogger

	mu       sync.RWMutex
	step     int
	finished bool
	err      error
}

// New returns a simulator drawing trials from rnd and writing snapshots to out.
func New(opts Options, rnd network.Source, out Sink, log *zap.SugaredLogger) *Simulator {
	return &Simulator{
		opts:  opts,
		rnd:   rnd,
		out:   out,
		pacer: rate.New(opts.StepRate),
		log:   log,
	}
}

// Run writes the initial state, then propagates until every computer shares
// one state, spreading becomes impossible, the step cap is hit, or ctx ends.
func (s *Simulator) Run(ctx context.Context, n *network.Network) (Result, error) {
	tr := otel.Tracer(telemetry.TracerName)
	ctx, span := tr.Start(ctx, "Run")
	defer span.End()

	computers := n.Computers()
	res := Result{RunID: s.opts.RunID, Total: len(computers)}
	span.SetAttributes(
		attribute.String("run_id", s.opts.RunID),
		attribute.Int("computers", len(computers)),
		attribute.Int("edges", n.Edges()),
	)

	if err := s.emit(computers, 0); err != nil {
		return s.fail(res, span, err)
	}

	for !network.IsStatic(computers) {
		if !network.CanSpread(n) {
			res.Outcome = OutcomeContained
			break
		}
		if s.opts.MaxSteps > 0 && res.Steps >= s.opts.MaxSteps {
			res.Outcome = OutcomeStepLimit
			s.log.Warnw("step limit reached", "run", s.opts.RunID, "max_steps", s.opts.MaxSteps)
			break
		}
		if err := s.pacer.Wait(ctx); err != nil {
			res.Outcome = OutcomeCancelled
			res.Infected, _ = network.Counts(computers)
			metrics.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
			s.finish(res.Steps, err)
			span.SetStatus(codes.Error, err.Error())
			return res, err
		}

		s.propagate(ctx, n, res.Steps+1)
		res.Steps++
		s.setStep(res.Steps)

		if err := s.emit(computers, res.Steps); err != nil {
			return s.fail(res, span, err)
		}
	}

	infected, total := network.Counts(computers)
	res.Infected = infected
	if res.Outcome == "" {
		if infected == total {
			res.Outcome = OutcomeAllInfected
		} else {
			res.Outcome = OutcomeNoneInfected
		}
	}

	metrics.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
	span.SetAttributes(
		attribute.Int("steps", res.Steps),
		attribute.String("outcome", string(res.Outcome)),
	)
	s.finish(res.Steps, nil)
	s.log.Infow("run finished",
		"run", s.opts.RunID,
		"outcome", res.Outcome,
		"steps", res.Steps,
		"infected", res.Infected,
		"total", res.Total,
	)
	return res, nil
}

func (s *Simulator) propagate(ctx context.Context, n *network.Network, step int) {
	_, span := otel.Tracer(telemetry.TracerName).Start(ctx, "Propagate")
	defer span.End()

	rep := network.Propagate(n, s.rnd)

	metrics.StepsTotal.Inc()
	metrics.TrialsTotal.WithLabelValues("success").Add(float64(rep.Successes))
	metrics.TrialsTotal.WithLabelValues("failure").Add(float64(rep.Trials - rep.Successes))
	metrics.InfectionsTotal.Add(float64(len(rep.Newly)))

	names := make([]string, len(rep.Newly))
	for i, c := range rep.Newly {
		names[i] = c.Name
	}
	span.SetAttributes(
		attribute.Int("step", step),
		attribute.Int("trials", rep.Trials),
		attribute.StringSlice("newly_infected", names),
	)
	s.log.Debugw("step", "run", s.opts.RunID, "step", step, "trials", rep.Trials, "newly_infected", names)
}

func (s *Simulator) emit(computers []*network.Computer, step int) error {
	snap := Snapshot(s.opts.RunID, step, computers)
	metrics.InfectedGauge.Set(float64(snap.Infected()))
	return s.out.WriteSnapshot(snap)
}

func (s *Simulator) fail(res Result, span trace.Span, err error) (Result, error) {
	s.finish(res.Steps, err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Errorw("run failed", "run", s.opts.RunID, "step", res.Steps, "err", err)
	return res, err
}

func (s *Simulator) setStep(step int) {
	s.mu.Lock()
	s.step = step
	s.mu.Unlock()
}

func (s *Simulator) finish(step int, err error) {
	s.mu.Lock()
	s.step = step
	s.finished = true
	s.err = err
	s.mu.Unlock()
}

// Progress reports the current step for the health endpoint. Safe to call
// while Run is in progress.
func (s *Simulator) Progress() health.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return health.Progress{Step: s.step, Finished: s.finished, Err: s.err}
}

// Snapshot captures the state of computers, in order, at the given step.
func Snapshot(runID string, step int, computers []*network.Computer) types.Snapshot {
	nodes := make([]types.NodeState, len(computers))
	for i, c := range computers {
		nodes[i] = types.NodeState{
			Name:     c.Name,
			Chance:   c.Profile.Chance(),
			Infected: c.Infected(),
		}
	}
	return types.Snapshot{
		RunID:     runID,
		Step:      step,
		Timestamp: time.Now().UTC(),
		Nodes:     nodes,
	}
}
