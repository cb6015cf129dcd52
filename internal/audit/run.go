package audit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/model"
	"github.com/roach88/atlas/internal/registry"
	"github.com/roach88/atlas/internal/validate"
)

// Options configure a run. The zero value uses the default year range, the
// system clock, UUIDv7 run ids and no logging.
type Options struct {
	Years  validate.YearRange
	Strict bool
	Logger *zap.Logger
	Clock  Clock
	IDs    IDGenerator
}

func (o Options) withDefaults() Options {
	if o.Years == (validate.YearRange{}) {
		o.Years = validate.DefaultYears
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.IDs == nil {
		o.IDs = UUIDv7Generator{}
	}
	return o
}

// Run loads src and validates every record. The only error it returns is
// cancellation of ctx; bad input is reported on the Report.
func Run(ctx context.Context, src Sources, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	rep := &Report{
		RunID:     opts.IDs.Generate(),
		StartedAt: opts.Clock.Now(),
		Strict:    opts.Strict,
		Years:     opts.Years,
		Sources:   src,
		Problems:  []dataset.Problem{},
	}
	log := opts.Logger.With(zap.String("run_id", rep.RunID))
	loader := dataset.NewLoader(log)

	set := loadRegistries(rep, loader, log)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit run: %w", err)
	}

	events, problems := dataset.JSONL[model.Event](loader, src.Events)
	rep.Problems = append(rep.Problems, problems...)
	eventCtx := validate.NewEventContext(set, opts.Years)
	rep.Events = summarize(validate.EventSchema, model.DomainEvent, events,
		func(e *model.Event) []byte { return e.Raw },
		func(e *model.Event) validate.Result { return validate.ValidateEvent(e, eventCtx) },
		log)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit run: %w", err)
	}

	patterns, problems := dataset.JSONL[model.Pattern](loader, src.Patterns)
	rep.Problems = append(rep.Problems, problems...)
	patternCtx := validate.PatternContext{Events: registry.NewIndex(registry.NameEvents, events)}
	rep.Patterns = summarize(validate.PatternSchema, model.DomainPattern, patterns,
		func(p *model.Pattern) []byte { return p.Raw },
		func(p *model.Pattern) validate.Result { return validate.ValidatePattern(p, patternCtx) },
		log)

	rep.Duration = opts.Clock.Now().Sub(rep.StartedAt)
	log.Info("audit run complete",
		zap.Int("events", rep.Events.Total),
		zap.Int("patterns", rep.Patterns.Total),
		zap.Int("rejected", rep.Rejected()),
		zap.Int("problems", len(rep.Problems)),
		zap.Bool("ok", rep.OK()),
	)
	return rep, nil
}

func loadRegistries(rep *Report, loader dataset.Loader, log *zap.Logger) *registry.Set {
	src := rep.Sources

	entities, problems := dataset.JSON[model.Entity](loader, src.Entities)
	rep.Problems = append(rep.Problems, problems...)
	layers, problems := dataset.JSON[model.StackLayer](loader, src.StackLayers)
	rep.Problems = append(rep.Problems, problems...)
	actions, problems := dataset.JSON[model.ActionType](loader, src.ActionTypes)
	rep.Problems = append(rep.Problems, problems...)

	var classes []model.EntityClass
	if optionalFileExists(src.EntityClasses) {
		classes, problems = dataset.JSON[model.EntityClass](loader, src.EntityClasses)
		rep.Problems = append(rep.Problems, problems...)
	} else {
		log.Debug("entity classes not configured", zap.String("path", src.EntityClasses))
	}

	rep.Problems = append(rep.Problems, registry.Check(src.Entities, entities)...)
	rep.Problems = append(rep.Problems, registry.Check(src.StackLayers, layers)...)
	rep.Problems = append(rep.Problems, registry.Check(src.ActionTypes, actions)...)
	rep.Problems = append(rep.Problems, registry.Check(src.EntityClasses, classes)...)

	set := registry.NewSet(entities, layers, actions, classes)
	rep.Problems = append(rep.Problems, registry.CheckEntityClasses(src.Entities, set.Entities, set.EntityClasses)...)

	rep.Registries = RegistryCounts{
		Entities:      set.Entities.Len(),
		StackLayers:   set.StackLayers.Len(),
		ActionTypes:   set.ActionTypes.Len(),
		EntityClasses: set.EntityClasses.Len(),
	}
	log.Debug("registries loaded",
		zap.Int("entities", rep.Registries.Entities),
		zap.Int("stack_layers", rep.Registries.StackLayers),
		zap.Int("action_types", rep.Registries.ActionTypes),
		zap.Int("entity_classes", rep.Registries.EntityClasses),
	)
	return set
}

// optionalFileExists reports whether an optional input should be loaded.
// Unreadable files are loaded anyway so the loader reports them.
func optionalFileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// summarize validates records in order and flags repeated ids.
func summarize[R model.Identifiable, C any](
	schema validate.Schema[R, C],
	domain string,
	records []R,
	raw func(*R) []byte,
	check func(*R) validate.Result,
	log *zap.Logger,
) Summary {
	s := newSummary(schema.Kind, schema.MaxScore(), schema.Thresholds)
	firstSeen := make(map[string]int, len(records))

	for i := range records {
		rec := &records[i]
		pos := i + 1
		id := (*rec).Key()
		res := check(rec)

		if id != "" {
			if first, ok := firstSeen[id]; ok {
				markDuplicate(&res, id, first)
			} else {
				firstSeen[id] = pos
			}
		}

		digest, err := model.Digest(domain, raw(rec))
		if err != nil {
			log.Debug("record digest failed", zap.String("kind", schema.Kind), zap.Int("index", pos), zap.Error(err))
		}

		log.Debug("record validated",
			zap.String("kind", schema.Kind),
			zap.Int("index", pos),
			zap.String("id", id),
			zap.Int("score", res.Score),
			zap.String("verdict", string(res.Verdict)),
		)
		s.add(RecordResult{Index: pos, ID: id, Digest: digest, Result: res})
	}
	return s
}

// markDuplicate adds the duplicate-id error to res and rejects it.
func markDuplicate(res *validate.Result, id string, first int) {
	res.Buckets = append(res.Buckets, validate.Bucket{
		Rule: RuleUnique,
		Findings: []validate.Finding{{
			Rule:     RuleUnique,
			Severity: validate.SeverityError,
			Message:  fmt.Sprintf("Duplicate id %q (first seen at record %d)", id, first),
		}},
	})
	res.Verdict = validate.Rejected
}
