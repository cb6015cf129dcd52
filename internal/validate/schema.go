package validate

// Rule is one independent scoring rule over records of type R with context C.
type Rule[R, C any] struct {
	Name        string
	Max         int
	Description string
	Check       func(rec *R, ctx C) Bucket
}

// Schema is an ordered rubric for one record kind.
type Schema[R, C any] struct {
	Kind       string
	Rules      []Rule[R, C]
	Thresholds Thresholds
}

// MaxScore is the sum of every rule's maximum.
func (s Schema[R, C]) MaxScore() int {
	total := 0
	for _, r := range s.Rules {
		total += r.Max
	}
	return total
}

// Validate runs every rule against rec and classifies the result.
// Points are clamped to each rule's range.
func (s Schema[R, C]) Validate(rec *R, ctx C) Result {
	res := Result{
		MaxScore: s.MaxScore(),
		Buckets:  make([]Bucket, 0, len(s.Rules)),
	}
	for _, rule := range s.Rules {
		b := rule.Check(rec, ctx)
		b.Rule = rule.Name
		b.Max = rule.Max
		b.Points = max(0, min(b.Points, rule.Max))
		for i := range b.Findings {
			b.Findings[i].Rule = rule.Name
		}
		res.Score += b.Points
		res.Buckets = append(res.Buckets, b)
	}
	res.Verdict = s.Thresholds.Classify(res.HasErrors(), res.Score)
	return res
}

// RuleInfo describes a rule without its check, for catalogues.
type RuleInfo struct {
	Name        string `json:"name"`
	Max         int    `json:"max"`
	Description string `json:"description"`
}

// Catalogue lists the schema's rules in order.
func (s Schema[R, C]) Catalogue() []RuleInfo {
	out := make([]RuleInfo, len(s.Rules))
	for i, r := range s.Rules {
		out[i] = RuleInfo{Name: r.Name, Max: r.Max, Description: r.Description}
	}
	return out
}
