// Package validate scores atlas records against the event and pattern rubrics.
//
// Each rubric is a Schema: an ordered list of independent rules. A rule looks
// at one record plus its read-only context and returns a Bucket holding the
// points it awards and the findings it raises. The record's score is the sum
// of its buckets; its verdict depends on the score and on whether any bucket
// raised an error.
//
// Rules are pure. Validating the same record twice yields identical results,
// and the order records are validated in never changes any result.
//
// Event rubric (max 10):
//
//	required        0  missing fields, wrong JSON types
//	evidence        3  source credibility mix
//	timestamp       2  date precision; date within the allowed years
//	classification  2  entity, action type and stack layers resolve
//	relevance       2  impact level
//	clarity         1  description length
//	enums           0  enumerated values
//
// Pattern rubric (max 12):
//
//	required         0  missing fields, wrong JSON types
//	hypothesis       3  hedged rather than causal thesis
//	support          3  number of supporting events
//	counter_signals  2  counter-signals listed
//	justification    2  confidence reasoning
//	time_bounds      1  explicit time range
//	insight          1  thesis depth
//	enums            0  enumerated values
package validate
