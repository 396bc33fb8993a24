// Package serialized models the serialized_space document of a Genie space.
//
// The document is version 2 JSON. Its ordered lists are modeled as a closed
// set of sections, each with its own path, ordering key and limits:
//
//	data_sources.tables                  identifier
//	data_sources.metric_views            identifier
//	instructions.text_instructions       id (at most one entry)
//	instructions.example_question_sqls   id
//	instructions.sql_snippets.measures   id
//	instructions.sql_snippets.filters    id
//	instructions.sql_snippets.expressions id
//	config.sample_questions              id
//
// Every section must be sorted ascending by its key, and tables plus metric
// views may not exceed MaxDataSources. Document.Apply enforces both after
// every mutation. Values outside the mutated section are kept as the bytes
// that were parsed, so concurrent edits to other sections made between the
// read and the write are not lost.
package serialized
