// Package catalog defines the GraphQL types for the knowledge graph.
package catalog

import (
	"sort"

	"github.com/graphql-go/graphql"
	"github.com/ortelius/advisor-backend/model"
)

// VersionType represents a released version of a catalog entity.
var VersionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Version",
	Fields: graphql.Fields{
		"entity_id":    &graphql.Field{Type: graphql.Int},
		"version":      &graphql.Field{Type: graphql.String},
		"release_date": &graphql.Field{Type: graphql.String},
		"end_date":     &graphql.Field{Type: graphql.String},
		"is_latest":    &graphql.Field{Type: graphql.Boolean},
	},
})

// EntityType represents a technology entity in the knowledge graph.
var EntityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Entity",
	Fields: graphql.Fields{
		"id":       &graphql.Field{Type: graphql.Int},
		"name":     &graphql.Field{Type: graphql.String},
		"category": &graphql.Field{Type: graphql.String},
		"keywords": &graphql.Field{Type: graphql.String},
		"root": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if e, ok := p.Source.(model.Entity); ok {
					return e.Root(), nil
				}
				return nil, nil
			},
		},
		"parent": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if e, ok := p.Source.(model.Entity); ok {
					return e.Parent(), nil
				}
				return nil, nil
			},
		},
	},
})

// ScoredEntityType is an entity paired with its similarity score.
var ScoredEntityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ScoredEntity",
	Fields: graphql.Fields{
		"entity_id": &graphql.Field{Type: graphql.Int},
		"name":      &graphql.Field{Type: graphql.String},
		"category":  &graphql.Field{Type: graphql.String},
		"score":     &graphql.Field{Type: graphql.Float},
	},
})

// ImageType represents a container image from one of the image catalogs.
var ImageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Image",
	Fields: graphql.Fields{
		"name":      &graphql.Field{Type: graphql.String},
		"registry":  &graphql.Field{Type: graphql.String},
		"namespace": &graphql.Field{Type: graphql.String},
		"tag":       &graphql.Field{Type: graphql.String},
		"url":       &graphql.Field{Type: graphql.String},
		"certified": &graphql.Field{Type: graphql.Boolean},
		"official":  &graphql.Field{Type: graphql.Boolean},
		"ref": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if im, ok := p.Source.(model.Image); ok {
					return im.Ref(), nil
				}
				return nil, nil
			},
		},
	},
})

// ImageCatalogCountType is the per-catalog image count.
var ImageCatalogCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ImageCatalogCount",
	Fields: graphql.Fields{
		"catalog": &graphql.Field{Type: graphql.String},
		"images":  &graphql.Field{Type: graphql.Int},
	},
})

// SummaryType represents the loaded knowledge graph counts.
var SummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CatalogSummary",
	Fields: graphql.Fields{
		"entities":        &graphql.Field{Type: graphql.Int},
		"versions":        &graphql.Field{Type: graphql.Int},
		"compatibilities": &graphql.Field{Type: graphql.Int},
		"image_catalogs": &graphql.Field{
			Type: graphql.NewList(ImageCatalogCountType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				summary, ok := p.Source.(model.CatalogSummary)
				if !ok {
					return nil, nil
				}
				names := make([]string, 0, len(summary.ImageCatalogs))
				for name := range summary.ImageCatalogs {
					names = append(names, name)
				}
				sort.Strings(names)
				counts := make([]map[string]interface{}, 0, len(names))
				for _, name := range names {
					counts = append(counts, map[string]interface{}{
						"catalog": name,
						"images":  summary.ImageCatalogs[name],
					})
				}
				return counts, nil
			},
		},
	},
})
