/*
Package domain contains the core domain models of the proposal wizard.

It defines the workflow entities (the transition table and its Steps), the
explicit Session that carries the accumulated answers, and the dynamic Value
type those answers are made of. This package is kept pure and free of I/O or
persistence concerns.

# Key Entities

  - Step: One row of the transition table, guarded by an optional condition.
  - Table: Steps grouped by name, each group kept in source order (first match wins).
  - Session: The current step, answer map and visit history of one user.
  - Value: A closed variant (String, Number, Bool, Null, List, Mapping) with ordered mappings.
  - PromptResult: Either a parsed structured LLM response or its raw cleaned text.
*/
package domain
