/*
Package querent is a natural-language-to-SQL agent.

A question moves through a fixed workflow graph: it is sanitized, classified,
enriched with schema descriptions retrieved by vector similarity, translated
into SQL, executed against a warehouse and turned back into a natural-language
answer, which is sanitized again before it is returned.

	sanitize_prompt -> classify_intent -> retrieve_schema -> generate_sql
	  -> execute_sql -> generate_response -> sanitize_response -> END

General questions skip straight to generate_response. Any failure is recorded
in the state and routed to handle_error, which turns it into the final answer,
so a run always ends with something to show the user.

# Usage

The Agent is built from service handles. Every handle is an interface from
pkg/ports; pkg/adapters holds implementations for Gemini, pgvector, an
in-process index, database/sql warehouses and a regex content guard.

	agent, err := querent.New(
		querent.WithGenerator(model),
		querent.WithEmbedder(model),
		querent.WithSearcher(index),
		querent.WithSchemaLookup(lookup),
		querent.WithIndex(ports.IndexRef{Endpoint: "schema", DeployedIndexID: "v1"}),
		querent.WithQueryEngine(wh),
		querent.WithSanitizer(guard.New()),
		querent.WithTables("acme", "retail", "stores", "products", "sales_transactions"),
	)
	if err != nil {
		log.Fatal(err)
	}

	state, err := agent.Ask(ctx, "How many stores are in Singapore?")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(state.Answer())

Runner drives the same agent from line-based IO, as the CLI does.
*/
package querent
