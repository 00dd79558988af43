/*
Package domain contains the core domain models of the querent agent.

It defines the conversation State threaded through every workflow node, the Update
deltas that nodes return, the routing decisions taken between nodes and the tagged
outcomes of SQL generation and execution. This package is kept pure and free of
external dependencies like I/O or model clients, following Hexagonal Architecture
principles.

# Key Entities

  - State: The snapshot of one question traversing the workflow.
  - Update: The fields a node changes. Updates are merged, never replaced.
  - Route: A conditional-edge decision plus the delta it applies.
  - Outcome: Generated, Rejected or Refused SQL.
  - Row: An ordered result record returned by the warehouse.
*/
package domain
