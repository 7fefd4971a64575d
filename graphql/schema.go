// Package graphql assembles the root schema from the per-module query fields.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/advisor-backend/catalog"
	catalogmodule "github.com/ortelius/advisor-backend/graphql/modules/catalog"
)

var store *catalog.Store

// InitStore wires the loaded knowledge graph into the resolvers. Must be
// called before CreateSchema.
func InitStore(s *catalog.Store) {
	store = s
}

// CreateSchema builds the root query schema over the catalog store.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range catalogmodule.GetQueryFields(store) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
