// Package harness runs rubric conformance scenarios against the audit engine.
//
// A scenario carries a small inline dataset, runs it through audit.Run and
// checks the verdicts, scores, findings and load problems that come out.
// Scenarios pin the scoring rubrics: a rule change that moves a score or
// reclassifies a record fails the scenarios that exercise it.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: unknown_entity_rejected
//	description: "An event naming an unknown entity is rejected"
//	years: { min: 2023, max: 2025 }
//	strict: false
//	dataset:
//	  entities: [ { id: openai, name: OpenAI, entity_class: lab } ]
//	  stack_layers: [ { id: models, name: Foundation Models } ]
//	  action_types: [ { id: product-launch, name: Product Launch } ]
//	  events:
//	    - { id: evt-001, entity_id: acme, ... }
//	    - '{"id": "evt-002", "broken'
//	  patterns: []
//	assertions:
//	  - type: verdict
//	    record: evt-001
//	    verdict: rejected
//	  - type: finding
//	    record: evt-001
//	    severity: error
//	    contains: 'entity_id "acme" not found'
//
// Registry collections are written as JSON documents and record collections
// as JSON lines. A string item in events or patterns is written verbatim,
// which lets a scenario feed malformed lines to the loader. Omitting a
// collection leaves its file absent.
//
// # Assertion Types
//
//   - verdict: the record landed in the given verdict
//   - score: the record scored exactly the given points
//   - finding: the record raised a finding of the given severity containing text
//   - no_findings: the record raised no finding of the given severity
//   - summary: collection counts (any subset of passed, needs_revision, rejected, total)
//   - problem: a load problem of the given kind was reported for a file
//   - outcome: the overall ok flag of the run
//
// # Deterministic Runs
//
// Every scenario runs with a frozen clock at Epoch and the run id
// "scenario-<name>", so the report snapshot is stable for golden comparison.
package harness
