package catalog

import (
	"github.com/graphql-go/graphql"
	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/standardize"
)

// GetQueryFields returns the catalog queries to be mounted in the root schema.
func GetQueryFields(store *catalog.Store) graphql.Fields {
	// The tf-idf matcher is built once over the loaded entities and shared
	// across search queries.
	matcher := standardize.NewMatcher(store)

	return graphql.Fields{
		"entity": &graphql.Field{
			Type: EntityType,
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				name := p.Args["name"].(string)
				return ResolveEntity(store, name)
			},
		},
		"searchEntities": &graphql.Field{
			Type: graphql.NewList(ScoredEntityType),
			Args: graphql.FieldConfigArgument{
				"term":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				term := p.Args["term"].(string)
				limit, _ := p.Args["limit"].(int)
				return ResolveEntitySearch(matcher, term, limit)
			},
		},
		"versions": &graphql.Field{
			Type: graphql.NewList(VersionType),
			Args: graphql.FieldConfigArgument{
				"entity": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				name := p.Args["entity"].(string)
				return ResolveVersions(store, name)
			},
		},
		"summary": &graphql.Field{
			Type: SummaryType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return store.Summary(), nil
			},
		},
		"images": &graphql.Field{
			Type: graphql.NewList(ImageType),
			Args: graphql.FieldConfigArgument{
				"catalog": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"entity":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				catalogName := p.Args["catalog"].(string)
				entityName, _ := p.Args["entity"].(string)
				return ResolveImages(store, catalogName, entityName)
			},
		},
	}
}
