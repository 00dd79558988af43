package nodes

import (
	"fmt"
	"strings"

	"github.com/aretw0/querent/pkg/domain"
)

func classifyPrompt(question string) string {
	return fmt.Sprintf(`Classify the user's query into one of the following categories: %s, %s.
Respond with only the category name.

Here are some examples:
User Query: "Show me sales figures for last quarter."
Category: DATABASE_QUERY

User Query: "What's your name?"
Category: GENERAL_QUESTION

User Query: "How many active users are there in Germany?"
Category: DATABASE_QUERY

User Query: "my email address is contact@example.com"
Category: GENERAL_QUESTION

User Query: "Just saying hi"
Category: GENERAL_QUESTION
---
Now classify the following:
User Query: %q
Category:`, domain.IntentDatabaseQuery, domain.IntentGeneralQuestion, question)
}

func sqlPrompt(question, schema string, tables []string) string {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = "`" + t + "`"
	}
	var b strings.Builder
	b.WriteString(`You are an expert SQL generator for an analytical warehouse. Based ONLY on the provided schema context and the user's question, generate a valid SQL query.

Key Guidelines:
1. Location mentions:
   * A country contains cities and a city contains stores.
   * A location name mentioned by the user (e.g. 'Jurong', 'Tampines') refers first to stores.store_name.
   * Interpret it as stores.city only when the question says "city of X" or "in the city X", or when a store name reading is impossible given the schema context.
   * Compare location names case-insensitively, e.g. LOWER(stores.store_name) = LOWER('LocationName').
2. Joins: combine tables using the FOREIGN KEY information given in the schema context.
3. Sales terminology:
   * 'Sales', 'revenue' or monetary 'best-selling' means SUM(total_amount) from sales_transactions.
   * 'Quantity sold' or unit 'best-selling' means SUM(quantity) from sales_transactions.
   * 'Average sales' or 'average quantity' uses AVG() on the matching column.
   * 'Popular' or 'frequent' without a unit prefers SUM(quantity).
4. Text filters: use LOWER() on both the column and the value, unless the value is a LIKE pattern such as '%chair%'.
5. Complex queries: use CTEs and window functions (ROW_NUMBER() OVER (PARTITION BY ... ORDER BY ...), SUM(...) OVER (...)) for rankings, top N and period comparisons.
6. Table naming: the tables are `)
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(`. ALWAYS use these fully qualified names.
7. Schema adherence: ONLY use tables and columns listed in the schema context. If a column needed to answer is missing, output 'NO_QUERY'.
8. Output format: output only the SQL query, with no explanations, comments or markdown fences.
9. If no valid query can be built, or the question is too ambiguous to infer a filter value, output the exact string 'NO_QUERY'.

Schema Context:
`)
	b.WriteString(schema)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	return b.String()
}

func responsePrompt(company, question, data string) string {
	return fmt.Sprintf(`You are a helpful assistant answering questions about %s sales data.
Based on the user's original question and the provided data (the result of a query), formulate a clear and concise natural language answer.
Do not mention the SQL query or the database. Just provide the answer to the question.

Data:
%s

Original Question: %s`, company, data, question)
}
