package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"science-helper/internal/domain"
	"science-helper/internal/splitter"
)

const (
	defaultModel          = "gpt-4o-mini"
	defaultTemperature    = 0.2
	defaultRequestTimeout = 60 * time.Second
	defaultMaxTextLength  = 20000
	defaultMaxSentences   = 200
)

// LLMClient sends one chat request and returns the raw text of the reply.
type LLMClient interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}

// Moderator flags text that must not be processed.
type Moderator interface {
	Moderate(ctx context.Context, input string) (bool, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Options tunes an ExplainService. Zero values fall back to defaults.
type Options struct {
	Model          string
	Temperature    *float64
	RequestTimeout time.Duration
	Concurrency    int
	MaxTextLength  int
	MaxSentences   int
	Moderator      Moderator
	Logger         *slog.Logger
}

type ExplainService struct {
	llm            LLMClient
	moderator      Moderator
	log            *slog.Logger
	model          string
	temperature    float64
	requestTimeout time.Duration
	concurrency    int
	maxTextLength  int
	maxSentences   int
}

// Failure describes a sentence that produced no record.
type Failure struct {
	Index    int       `json:"index"`
	Sentence string    `json:"sentence"`
	Code     ErrorCode `json:"code"`
	Reason   string    `json:"reason"`
}

type ProcessOutput struct {
	RunID         string                  `json:"run_id" yaml:"run_id"`
	SentenceCount int                     `json:"sentence_count" yaml:"sentence_count"`
	Records       []domain.SentenceRecord `json:"records" yaml:"records"`
	Failures      []Failure               `json:"failures" yaml:"failures"`
}

func (o ProcessOutput) Table() domain.Table {
	return domain.NewTable(o.Records)
}

// Skipped is the number of sentences without a record.
func (o ProcessOutput) Skipped() int {
	return len(o.Failures)
}

func (o ProcessOutput) ParseFailures() int {
	return o.countFailures(func(c ErrorCode) bool { return c == ErrorParse })
}

// ServiceFailures counts sentences whose request failed or never ran.
func (o ProcessOutput) ServiceFailures() int {
	return o.countFailures(func(c ErrorCode) bool { return c != ErrorParse })
}

func (o ProcessOutput) countFailures(match func(ErrorCode) bool) int {
	n := 0
	for _, f := range o.Failures {
		if match(f.Code) {
			n++
		}
	}
	return n
}

func NewExplainService(llm LLMClient, opts Options) (*ExplainService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	s := &ExplainService{
		llm:            llm,
		moderator:      opts.Moderator,
		log:            opts.Logger,
		model:          strings.TrimSpace(opts.Model),
		temperature:    defaultTemperature,
		requestTimeout: opts.RequestTimeout,
		concurrency:    opts.Concurrency,
		maxTextLength:  opts.MaxTextLength,
		maxSentences:   opts.MaxSentences,
	}
	if opts.Temperature != nil {
		if *opts.Temperature < 0 || *opts.Temperature > 2 {
			return nil, fmt.Errorf("usecase: temperature %v out of range [0,2]", *opts.Temperature)
		}
		s.temperature = *opts.Temperature
	}
	if s.model == "" {
		s.model = defaultModel
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	if s.maxTextLength <= 0 {
		s.maxTextLength = defaultMaxTextLength
	}
	if s.maxSentences <= 0 {
		s.maxSentences = defaultMaxSentences
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s, nil
}

// Explain requests the translation and simple explanation of one sentence.
// The returned record always carries sentence as its English text.
func (s *ExplainService) Explain(ctx context.Context, sentence string) (domain.SentenceRecord, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return domain.SentenceRecord{}, newError(ErrorInvalidInput, "empty_sentence", nil)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	raw, err := s.llm.Complete(reqCtx, domain.ChatRequest{
		Model:       s.model,
		Messages:    buildPromptMessages(sentence),
		Temperature: s.temperature,
	})
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return domain.SentenceRecord{}, newError(ErrorRateLimited, "llm_rate_limited", err)
		}
		if ctx.Err() != nil {
			return domain.SentenceRecord{}, newError(ErrorCanceled, "run_canceled", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.SentenceRecord{}, newError(ErrorService, "llm_timeout", err)
		}
		return domain.SentenceRecord{}, newError(ErrorService, "llm_error", err)
	}

	reply, err := parseExplanation(raw)
	if err != nil {
		return domain.SentenceRecord{}, newError(ErrorParse, "llm_malformed_response", err)
	}
	if strings.TrimSpace(*reply.English) != sentence {
		s.log.DebugContext(ctx, "model echoed a different sentence",
			slog.String("sentence", sentence), slog.String("echo", *reply.English))
	}

	return domain.SentenceRecord{
		English:           sentence,
		DirectTranslation: *reply.DirectMarathi,
		SimpleExplanation: *reply.SimpleMarathi,
	}, nil
}

// Process splits text into sentences and explains each one. A failing
// sentence is reported in Failures and never stops the run. The error is
// non-nil only for rejected input or a cancelled ctx; in the latter case the
// partial output is returned alongside it.
func (s *ExplainService) Process(ctx context.Context, text string) (ProcessOutput, error) {
	out := ProcessOutput{RunID: newRunID(), Records: []domain.SentenceRecord{}, Failures: []Failure{}}

	if len(text) > s.maxTextLength {
		return out, newError(ErrorInvalidInput, "text_too_long", nil)
	}
	sentences := splitter.Split(text)
	if len(sentences) == 0 {
		return out, nil
	}
	if len(sentences) > s.maxSentences {
		return out, newError(ErrorInvalidInput, "too_many_sentences", nil)
	}
	log := s.log.With(slog.String("run_id", out.RunID))

	// Nothing is counted until every sentence can be accounted for.
	if err := ctx.Err(); err != nil {
		return out, newError(ErrorCanceled, "run_canceled", err)
	}
	if s.moderator != nil {
		flagged, err := s.moderator.Moderate(ctx, text)
		if err != nil {
			if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
				return out, newError(ErrorRateLimited, "moderation_rate_limited", err)
			}
			return out, newError(ErrorService, "moderation_error", err)
		}
		if flagged {
			return out, newError(ErrorInvalidInput, "moderation_flagged", nil)
		}
	}
	out.SentenceCount = len(sentences)

	log.InfoContext(ctx, "run started", slog.Int("sentences", len(sentences)), slog.Int("concurrency", s.concurrency))

	type result struct {
		record domain.SentenceRecord
		err    *Error
	}
	results := make([]result, len(sentences))
	dispatched := make([]bool, len(sentences))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, sentence := range sentences {
		if ctx.Err() != nil {
			break
		}
		dispatched[i] = true
		g.Go(func() error {
			rec, err := s.Explain(ctx, sentence)
			if err != nil {
				var uerr *Error
				if !errors.As(err, &uerr) {
					uerr = newError(ErrorInternal, "unexpected_error", err)
				}
				results[i].err = uerr
				return nil
			}
			results[i].record = rec
			return nil
		})
	}
	_ = g.Wait()

	for i, sentence := range sentences {
		res := results[i]
		switch {
		case !dispatched[i]:
			out.Failures = append(out.Failures, Failure{Index: i, Sentence: sentence, Code: ErrorCanceled, Reason: "not_dispatched"})
		case res.err != nil:
			log.WarnContext(ctx, "sentence skipped",
				slog.Int("index", i),
				slog.String("code", string(res.err.Code)),
				slog.String("reason", res.err.Reason),
				slog.Any("err", res.err.Err),
			)
			out.Failures = append(out.Failures, Failure{Index: i, Sentence: sentence, Code: res.err.Code, Reason: res.err.Reason})
		default:
			out.Records = append(out.Records, res.record)
		}
	}

	log.InfoContext(ctx, "run finished",
		slog.Int("records", len(out.Records)),
		slog.Int("parse_failures", out.ParseFailures()),
		slog.Int("service_failures", out.ServiceFailures()),
	)

	if err := ctx.Err(); err != nil {
		return out, newError(ErrorCanceled, "run_canceled", err)
	}
	return out, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newRunID = func() string {
	return uuid.NewString()
}
