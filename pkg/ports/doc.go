/*
Package ports defines the driven ports (interfaces) for the wizard engine.

These interfaces decouple the workflow core from external implementations, so
the engine works with various table sources, session stores, LLM backends and
document formats.

# Key Interfaces

  - TableLoader: Loads the transition table (from a file, memory, etc.).
  - SessionStore: Persists and loads workflow sessions by ID.
  - DistributedLocker: Coordinates concurrent access to one session across replicas.
  - PromptRunner: Sends an expanded prompt to an LLM and returns its result.
  - DocumentWriter: Serializes a rendered document to an output format.
  - Workflow: The stateless engine surface used by the HTTP and MCP adapters.
*/
package ports
