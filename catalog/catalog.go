// Package catalog - Loads and indexes the exported knowledge-graph artifacts
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ortelius/advisor-backend/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = InitLogger() // setup the logger

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}

// Logger exposes the package logger so other packages share one sink.
func Logger() *zap.Logger { return logger }

// Artifact file names within the knowledge-graph directory.
const (
	EntitiesFile        = "entities.json"
	VersionsFile        = "versions.json"
	CompatibilitiesFile = "compatibilities.json"
	ImagesDir           = "images"
)

// Store holds the read-only in-memory catalog. It is loaded once at process
// start and may be shared by any number of request handlers without locking;
// no pipeline stage mutates it.
type Store struct {
	Entities []model.Entity

	byID     map[int]*model.Entity
	byName   map[string][]*model.Entity // lowercased canonical name
	versions map[int][]model.VersionRecord
	latest   map[int]string
	compat   map[int][]int              // tech entity id -> OS entity ids
	images   map[string][]model.Image   // image catalog name -> images
	imageIdx map[string]map[int][]int   // catalog -> entity id -> image positions
	counts   model.CatalogSummary
}

// Load reads every artifact under dir and builds the derived indexes. A
// missing or malformed artifact is fatal for the caller: the store must not
// serve standardization or planning until it is resolved.
func Load(dir string) (*Store, error) {
	s := &Store{
		byID:     make(map[int]*model.Entity),
		byName:   make(map[string][]*model.Entity),
		versions: make(map[int][]model.VersionRecord),
		latest:   make(map[int]string),
		compat:   make(map[int][]int),
		images:   make(map[string][]model.Image),
		imageIdx: make(map[string]map[int][]int),
	}

	if err := readArtifact(filepath.Join(dir, EntitiesFile), &s.Entities); err != nil {
		return nil, err
	}
	if len(s.Entities) == 0 {
		return nil, fmt.Errorf("catalog artifact %s: no entities", EntitiesFile)
	}
	for i := range s.Entities {
		e := &s.Entities[i]
		if !e.Category.Valid() {
			return nil, fmt.Errorf("catalog artifact %s: entity %d %q has unknown category %q",
				EntitiesFile, e.ID, e.Name, e.Category)
		}
		if _, dup := s.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog artifact %s: duplicate entity id %d", EntitiesFile, e.ID)
		}
		s.byID[e.ID] = e
		key := strings.ToLower(e.Name)
		s.byName[key] = append(s.byName[key], e)
	}

	var versions []model.VersionRecord
	if err := readArtifact(filepath.Join(dir, VersionsFile), &versions); err != nil {
		return nil, err
	}
	for _, v := range versions {
		if _, ok := s.byID[v.EntityID]; !ok {
			return nil, fmt.Errorf("catalog artifact %s: version %q references unknown entity %d",
				VersionsFile, v.Version, v.EntityID)
		}
		s.versions[v.EntityID] = append(s.versions[v.EntityID], v)
	}
	s.computeLatest()

	var edges []model.CompatibilityEdge
	if err := readArtifact(filepath.Join(dir, CompatibilitiesFile), &edges); err != nil {
		return nil, err
	}
	for _, e := range edges {
		osEnt, ok := s.byID[e.OSID]
		if !ok || osEnt.Category != model.CategoryOS {
			return nil, fmt.Errorf("catalog artifact %s: edge references non-OS entity %d",
				CompatibilitiesFile, e.OSID)
		}
		if _, ok := s.byID[e.TechID]; !ok {
			return nil, fmt.Errorf("catalog artifact %s: edge references unknown entity %d",
				CompatibilitiesFile, e.TechID)
		}
		s.compat[e.TechID] = append(s.compat[e.TechID], e.OSID)
	}

	if err := s.loadImages(filepath.Join(dir, ImagesDir)); err != nil {
		return nil, err
	}

	s.counts = model.CatalogSummary{
		Entities:        len(s.Entities),
		Versions:        len(versions),
		Compatibilities: len(edges),
		ImageCatalogs:   make(map[string]int),
	}
	for name, imgs := range s.images {
		s.counts.ImageCatalogs[name] = len(imgs)
	}

	logger.Sugar().Infof("Catalog loaded: %d entities, %d versions, %d compatibility edges, %d image catalogs",
		len(s.Entities), len(versions), len(edges), len(s.images))
	return s, nil
}

// MustLoad is Load for process start-up: an unusable catalog makes every
// subsequent answer wrong, so it exits loudly.
func MustLoad(dir string) *Store {
	s, err := Load(dir)
	if err != nil {
		logger.Sugar().Fatalf("Catalog load failed: %v", err)
	}
	return s
}

func readArtifact(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog artifact %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) loadImages(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("catalog artifact %s: %w", ImagesDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		var imgs []model.Image
		if err := readArtifact(filepath.Join(dir, entry.Name()), &imgs); err != nil {
			return err
		}
		idx := make(map[int][]int)
		for i, im := range imgs {
			if osEnt, ok := s.byID[im.OSID]; !ok || osEnt.Category != model.CategoryOS {
				return fmt.Errorf("catalog artifact %s/%s: image %q has invalid os_id %d",
					ImagesDir, entry.Name(), im.Name, im.OSID)
			}
			for _, id := range im.TechIDs() {
				idx[id] = append(idx[id], i)
			}
		}
		s.images[name] = imgs
		s.imageIdx[name] = idx
	}
	if len(s.images) == 0 {
		return fmt.Errorf("catalog artifact %s: no image catalogs found", ImagesDir)
	}
	return nil
}

func (s *Store) computeLatest() {
	for id, history := range s.versions {
		best := -1
		for i, v := range history {
			if best < 0 || CompareVersions(v.Version, history[best].Version) > 0 {
				best = i
			}
		}
		if best >= 0 {
			s.versions[id][best].IsLatest = true
			s.latest[id] = history[best].Version
		}
	}
}

// EntityByID returns the entity record for an id.
func (s *Store) EntityByID(id int) *model.Entity {
	return s.byID[id]
}

// EntityByName returns the entity whose canonical name matches,
// case-insensitively, only when exactly one entity carries the name.
// Ambiguous names return nil: ambiguity is never auto-resolved.
func (s *Store) EntityByName(name string) *model.Entity {
	matches := s.byName[strings.ToLower(name)]
	if len(matches) != 1 {
		return nil
	}
	return matches[0]
}

// VersionsOf returns the version history recorded for an entity.
func (s *Store) VersionsOf(entityID int) []model.VersionRecord {
	return s.versions[entityID]
}

// LatestVersion returns the precomputed latest version for an entity.
func (s *Store) LatestVersion(entityID int) (string, bool) {
	v, ok := s.latest[entityID]
	return v, ok
}

// CompatibleOS returns the base OS entities a technology is known to run on.
func (s *Store) CompatibleOS(techID int) []*model.Entity {
	var out []*model.Entity
	for _, id := range s.compat[techID] {
		if e := s.byID[id]; e != nil {
			out = append(out, e)
		}
	}
	return out
}

// OSFamilyOf reduces an OS entity to its root family name, e.g.
// "Linux|Red Hat Enterprise Linux" to "Linux".
func (s *Store) OSFamilyOf(entityID int) string {
	e := s.byID[entityID]
	if e == nil {
		return ""
	}
	return e.Root()
}

// Catalogs lists the loaded image catalog names, sorted.
func (s *Store) Catalogs() []string {
	names := make([]string, 0, len(s.images))
	for name := range s.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasCatalog reports whether the named image catalog was loaded.
func (s *Store) HasCatalog(name string) bool {
	_, ok := s.images[name]
	return ok
}

// ImagesInCatalog returns all images of a catalog in artifact order.
func (s *Store) ImagesInCatalog(name string) []model.Image {
	return s.images[name]
}

// ImagesFor returns, in artifact order, the images of a catalog that provide
// the given technology entity.
func (s *Store) ImagesFor(catalogName string, entityID int) []model.Image {
	idx, ok := s.imageIdx[catalogName]
	if !ok {
		return nil
	}
	var out []model.Image
	for _, pos := range idx[entityID] {
		out = append(out, s.images[catalogName][pos])
	}
	return out
}

// Summary reports entity, version, edge and per-catalog image counts.
func (s *Store) Summary() model.CatalogSummary {
	return s.counts
}
