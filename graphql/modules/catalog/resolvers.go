package catalog

import (
	"fmt"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/standardize"
	"github.com/ortelius/advisor-backend/model"
)

// ResolveEntity looks up a single entity by its canonical name.
func ResolveEntity(store *catalog.Store, name string) (interface{}, error) {
	e := store.EntityByName(name)
	if e == nil {
		return nil, nil
	}
	return *e, nil
}

// ResolveEntitySearch scores the free-text term against every entity and
// returns the top matches in descending score order.
func ResolveEntitySearch(matcher *standardize.Matcher, term string, limit int) ([]model.MatchCandidate, error) {
	candidates := matcher.Match(term)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// ResolveVersions returns the version history of a named entity.
func ResolveVersions(store *catalog.Store, name string) ([]model.VersionRecord, error) {
	e := store.EntityByName(name)
	if e == nil {
		return nil, fmt.Errorf("unknown entity %q", name)
	}
	return store.VersionsOf(e.ID), nil
}

// ResolveImages returns the images of a catalog, optionally narrowed to the
// images covering a named entity.
func ResolveImages(store *catalog.Store, catalogName, entityName string) ([]model.Image, error) {
	if !store.HasCatalog(catalogName) {
		return nil, fmt.Errorf("unknown image catalog %q", catalogName)
	}
	if entityName == "" {
		return store.ImagesInCatalog(catalogName), nil
	}
	e := store.EntityByName(entityName)
	if e == nil {
		return nil, fmt.Errorf("unknown entity %q", entityName)
	}
	return store.ImagesFor(catalogName, e.ID), nil
}
