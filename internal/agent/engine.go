package agent

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/metrics"
)

// Outcome is the tagged label a stage returns; the engine resolves it
// through the transition table to pick the next stage.
type Outcome int

const (
	// OutcomeDefault is returned by single-successor stages.
	OutcomeDefault Outcome = iota
	// OutcomeSuccess means the relevance gate judged the evidence sufficient.
	OutcomeSuccess
	// OutcomeRetry sends the loop back to query generation for more evidence.
	OutcomeRetry
	// OutcomePass means the review gate accepted the answer.
	OutcomePass
	// OutcomeFail sends the loop back to query generation for a better answer.
	OutcomeFail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDefault:
		return "default"
	case OutcomeSuccess:
		return "success"
	case OutcomeRetry:
		return "retry"
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	default:
		return "unknown"
	}
}

type stage int

const (
	stageQueryGen stage = iota
	stageSearch
	stageRelevance
	stageAnswer
	stageReview
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageQueryGen:
		return "query_generation"
	case stageSearch:
		return "retrieval"
	case stageRelevance:
		return "relevance_gate"
	case stageAnswer:
		return "answer_synthesis"
	case stageReview:
		return "review_gate"
	case stageDone:
		return "done"
	default:
		return "unknown"
	}
}

// maxIterations is the hard cap on query-generation attempts. Both gates
// force a positive outcome once Iteration reaches it, which is the sole
// guarantee that the loop terminates regardless of model judgments.
const maxIterations = 3

// transitions is the fixed stage graph. The engine holds no business logic;
// it only dispatches stages and looks their outcomes up here.
var transitions = map[stage]map[Outcome]stage{
	stageQueryGen:  {OutcomeDefault: stageSearch},
	stageSearch:    {OutcomeDefault: stageRelevance},
	stageRelevance: {OutcomeSuccess: stageAnswer, OutcomeRetry: stageQueryGen},
	stageAnswer:    {OutcomeDefault: stageReview},
	stageReview:    {OutcomePass: stageDone, OutcomeFail: stageQueryGen},
}

// Engine drives one question through the query-generation / retrieval /
// relevance / synthesis / review loop. Stages run strictly sequentially and
// share a single SessionState; an Engine run never executes stages
// concurrently. The Engine itself is stateless between runs and safe to
// reuse, but each Run owns its SessionState exclusively.
type Engine struct {
	llm        LanguageModel
	search     Searcher
	logger     *zap.Logger
	progress   Progress
	answerSink io.Writer
	prompts    Templates
	market     string
	maxResults int
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithProgress sets the progress sink called at stage checkpoints.
func WithProgress(p Progress) Option { return func(e *Engine) { e.progress = p } }

// WithAnswerSink streams answer fragments to w as synthesis produces them.
func WithAnswerSink(w io.Writer) Option { return func(e *Engine) { e.answerSink = w } }

// WithTemplates overrides the built-in prompt templates.
func WithTemplates(t Templates) Option { return func(e *Engine) { e.prompts = t } }

// WithMarket sets the search locale/market passed to the Searcher.
func WithMarket(m string) Option { return func(e *Engine) { e.market = m } }

// WithMaxResults sets how many search results retrieval requests.
func WithMaxResults(n int) Option { return func(e *Engine) { e.maxResults = n } }

// WithClock overrides the time source used for the answer prompt date.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine creates an engine bound to the two capabilities.
func NewEngine(llm LanguageModel, search Searcher, opts ...Option) *Engine {
	e := &Engine{
		llm:        llm,
		search:     search,
		logger:     zap.NewNop(),
		prompts:    DefaultTemplates(),
		market:     "br-pt",
		maxResults: 10,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the loop for userQuery until the answer is accepted. The
// returned state always carries whatever partial Answer exists, even when an
// engine-level fault aborts the run. Stage-level capability failures never
// abort; the stages are fail-open. Cancellation is honored between stages.
func (e *Engine) Run(ctx context.Context, userQuery string) (state *SessionState, err error) {
	state = NewSessionState(userQuery)
	start := time.Now()
	metrics.RunsStarted.Inc()

	cur := stageQueryGen
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage %s panicked: %v", cur, r)
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RunsCompleted.WithLabelValues(status).Inc()
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	for cur != stageDone {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return state, ctxErr
		}
		e.logger.Info("stage start",
			zap.String("stage", cur.String()),
			zap.Int("iteration", state.Iteration),
		)
		out := e.runStage(ctx, cur, state)
		metrics.StageExecutions.WithLabelValues(cur.String(), out.String()).Inc()

		next, ok := transitions[cur][out]
		if !ok {
			return state, fmt.Errorf("stage %s returned unmapped outcome %q", cur, out)
		}
		cur = next
	}
	return state, nil
}

func (e *Engine) runStage(ctx context.Context, st stage, s *SessionState) Outcome {
	switch st {
	case stageQueryGen:
		return e.generateQuery(ctx, s)
	case stageSearch:
		return e.retrieve(ctx, s)
	case stageRelevance:
		return e.checkRelevance(ctx, s)
	case stageAnswer:
		return e.synthesizeAnswer(ctx, s)
	case stageReview:
		return e.reviewAnswer(ctx, s)
	default:
		panic(fmt.Sprintf("no stage function for %s", st))
	}
}

func (e *Engine) emitProgress(fraction float64, desc string) {
	if e.progress != nil {
		e.progress(fraction, desc)
	}
}

// truncateRunes limits s to at most n runes, mirroring how the prompts were
// originally windowed by character count rather than bytes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
