package planner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/voyager/internal/gemini"
)

const (
	SubjectPlanGenerated = "voyager.plan.generated"
	SubjectPlanFailed    = "voyager.plan.failed"
)

// Streamer is the generation backend. *gemini.Client satisfies it.
type Streamer interface {
	Stream(ctx context.Context, messages []gemini.Message, cb gemini.Callbacks)
}

// Publisher delivers plan notifications. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

type Planner struct {
	llm       Streamer
	publisher Publisher
	logger    *slog.Logger
}

// New returns a Planner. publisher may be nil, in which case no
// notifications are sent.
func New(llm Streamer, publisher Publisher, logger *slog.Logger) *Planner {
	return &Planner{llm: llm, publisher: publisher, logger: logger}
}

// Run sends prompt as a single user message and returns the accumulated
// text. tap, when non-nil, sees every chunk as it arrives.
func (p *Planner) Run(ctx context.Context, task Task, prompt string, tap func(string)) (string, error) {
	requestID := uuid.New().String()
	start := time.Now()

	var (
		sb     strings.Builder
		result error
	)
	p.llm.Stream(ctx, []gemini.Message{gemini.UserMessage(prompt)}, gemini.Callbacks{
		OnChunk: func(text string) {
			sb.WriteString(text)
			if tap != nil {
				tap(text)
			}
		},
		OnError: func(err error) { result = err },
	})

	event := PlanEvent{
		RequestID:  requestID,
		Task:       task,
		Chars:      sb.Len(),
		DurationMS: time.Since(start).Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	if result != nil {
		event.Error = result.Error()
		p.notify(SubjectPlanFailed, event)
		return "", result
	}

	p.logger.Info("plan generated", "task", task, "request_id", requestID, "chars", event.Chars, "duration_ms", event.DurationMS)
	p.notify(SubjectPlanGenerated, event)
	return sb.String(), nil
}

func (p *Planner) notify(subject string, event PlanEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, event); err != nil {
		p.logger.Warn("failed to publish plan event", "subject", subject, "error", err)
	}
}

// EstimateBudget validates r and returns the generated budget breakdown.
func (p *Planner) EstimateBudget(ctx context.Context, r BudgetRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return p.Run(ctx, TaskBudget, BudgetPrompt(r), nil)
}

// PlanTrip validates r and returns the generated trip plan.
func (p *Planner) PlanTrip(ctx context.Context, r TripRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return p.Run(ctx, TaskTrip, TripPrompt(r), nil)
}

// RecommendMusic validates r and returns the generated playlists.
func (p *Planner) RecommendMusic(ctx context.Context, r MusicRequest) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return p.Run(ctx, TaskMusic, MusicPrompt(r), nil)
}
