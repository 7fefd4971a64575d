package infer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/standardize"
	"github.com/ortelius/advisor-backend/model"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()

	entities := []model.Entity{
		{ID: 1, Name: "Linux", Category: model.CategoryOS},
		{ID: 2, Name: "Windows", Category: model.CategoryOS},
		{ID: 3, Name: "JavaScript", Category: model.CategoryLang},
		{ID: 4, Name: "JavaScript|AngularJS", Category: model.CategoryLib},
		{ID: 5, Name: "Java", Category: model.CategoryLang},
		{ID: 6, Name: "DB2", Category: model.CategoryApp},
		{ID: 7, Name: "Ghost", Category: model.CategoryApp},
		{ID: 8, Name: "WinOnly", Category: model.CategoryApp},
		{ID: 9, Name: "Duplicate", Category: model.CategoryLang},
		{ID: 10, Name: "Duplicate", Category: model.CategoryLang},
		{ID: 11, Name: "Duplicate|Child", Category: model.CategoryLib},
	}
	versions := []model.VersionRecord{
		{EntityID: 3, Version: "ES2023"},
	}
	edges := []model.CompatibilityEdge{
		{OSID: 1, TechID: 3},
		{OSID: 2, TechID: 3},
		{OSID: 1, TechID: 5},
		{OSID: 2, TechID: 5},
		{OSID: 1, TechID: 6},
		{OSID: 2, TechID: 8},
	}

	writeJSON(t, filepath.Join(dir, catalog.EntitiesFile), entities)
	writeJSON(t, filepath.Join(dir, catalog.VersionsFile), versions)
	writeJSON(t, filepath.Join(dir, catalog.CompatibilitiesFile), edges)
	if err := os.MkdirAll(filepath.Join(dir, catalog.ImagesDir), 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, catalog.ImagesDir, "dockerhub.json"), []model.Image{})

	s, err := catalog.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

var prefs = []string{"Linux", "Windows"}

func TestInferParentLanguage(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryLib).Set("angularjs", model.StandardizedTech{
		Name: "JavaScript|AngularJS", EntityID: 4, Score: 1,
	})

	eng.Apply(comp)

	tech, ok := comp.BucketIfPresent(model.CategoryLang).Get("JavaScript")
	if !ok {
		t.Fatalf("Lang bucket = %v, want inferred JavaScript", comp.BucketIfPresent(model.CategoryLang).Keys())
	}
	if !tech.Inferred {
		t.Error("inferred entry not flagged Inferred")
	}
	if tech.DetectedVersion != standardize.NAVersion {
		t.Errorf("DetectedVersion = %q, want sentinel", tech.DetectedVersion)
	}
	if tech.StandardizedVersion != "ES2023" {
		t.Errorf("StandardizedVersion = %q, want latest ES2023", tech.StandardizedVersion)
	}
}

func TestInferParentAlreadyPresent(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryLang).Set("javascript", model.StandardizedTech{
		Name: "JavaScript", EntityID: 3, Score: 1,
	})
	comp.Bucket(model.CategoryLib).Set("angularjs", model.StandardizedTech{
		Name: "JavaScript|AngularJS", EntityID: 4, Score: 1,
	})

	eng.Apply(comp)

	if got := comp.BucketIfPresent(model.CategoryLang).Len(); got != 1 {
		t.Errorf("Lang bucket has %d entries, want the detected one only", got)
	}
}

func TestInferParentAmbiguousName(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryLib).Set("duplicate child", model.StandardizedTech{
		Name: "Duplicate|Child", EntityID: 11, Score: 1,
	})

	eng.Apply(comp)

	// Two catalog entities share the name "Duplicate"; ambiguity is never
	// auto-resolved.
	if got := comp.BucketIfPresent(model.CategoryLang).Len(); got != 0 {
		t.Errorf("Lang bucket = %v, want no inference for ambiguous parent",
			comp.BucketIfPresent(model.CategoryLang).Keys())
	}
}

func TestResolveOSIntersection(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryLang).Set("java", model.StandardizedTech{Name: "Java", EntityID: 5})
	comp.Bucket(model.CategoryApp).Set("db2", model.StandardizedTech{Name: "DB2", EntityID: 6})

	eng.Apply(comp)

	if comp.RecommendedOS != "Linux" {
		t.Errorf("RecommendedOS = %q, want Linux", comp.RecommendedOS)
	}
	linux := comp.OSFamilyTech["Linux"]
	if len(linux) != 2 {
		t.Errorf("OSFamilyTech[Linux] = %v, want Java and DB2", linux)
	}
	windows := comp.OSFamilyTech["Windows"]
	if len(windows) != 1 || windows[0] != "Java" {
		t.Errorf("OSFamilyTech[Windows] = %v, want Java only", windows)
	}
}

func TestResolveOSEmptyIntersection(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryApp).Set("db2", model.StandardizedTech{Name: "DB2", EntityID: 6})
	comp.Bucket(model.CategoryApp).Set("winonly", model.StandardizedTech{Name: "WinOnly", EntityID: 8})

	eng.Apply(comp)

	if comp.RecommendedOS != "" {
		t.Errorf("RecommendedOS = %q, want unset for disjoint families", comp.RecommendedOS)
	}
	if len(comp.OSFamilyTech) != 2 {
		t.Errorf("OSFamilyTech = %v, want both families recorded", comp.OSFamilyTech)
	}
	// The Linux family ranks first in the preference order, so the
	// Windows-only technology is the one flagged as incompatible.
	if len(comp.IncompatibleTech) != 1 || comp.IncompatibleTech[0] != "WinOnly" {
		t.Errorf("IncompatibleTech = %v, want [WinOnly]", comp.IncompatibleTech)
	}
}

func TestResolveOSNoEdges(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryApp).Set("ghost", model.StandardizedTech{Name: "Ghost", EntityID: 7})
	comp.Bucket(model.CategoryApp).Set("db2", model.StandardizedTech{Name: "DB2", EntityID: 6})

	eng.Apply(comp)

	// A technology with no compatibility edges is reported, not allowed to
	// empty the intersection.
	if len(comp.IncompatibleTech) != 1 || comp.IncompatibleTech[0] != "Ghost" {
		t.Errorf("IncompatibleTech = %v, want [Ghost]", comp.IncompatibleTech)
	}
	if comp.RecommendedOS != "Linux" {
		t.Errorf("RecommendedOS = %q, want Linux", comp.RecommendedOS)
	}
}

func TestChooseFamilyPrefersDetectedOS(t *testing.T) {
	eng := New(newTestStore(t), prefs)
	comp := &model.Component{}
	comp.Bucket(model.CategoryOS).Set("windows", model.StandardizedTech{Name: "Windows", EntityID: 2})
	comp.Bucket(model.CategoryLang).Set("java", model.StandardizedTech{Name: "Java", EntityID: 5})

	eng.Apply(comp)

	// Java runs on both families; the detected OS outranks the Linux-first
	// preference order.
	if comp.RecommendedOS != "Windows" {
		t.Errorf("RecommendedOS = %q, want the detected Windows", comp.RecommendedOS)
	}
}

func TestChooseFamilyPreferenceOrder(t *testing.T) {
	eng := New(newTestStore(t), []string{"Windows", "Linux"})
	comp := &model.Component{}
	comp.Bucket(model.CategoryLang).Set("java", model.StandardizedTech{Name: "Java", EntityID: 5})

	eng.Apply(comp)

	if comp.RecommendedOS != "Windows" {
		t.Errorf("RecommendedOS = %q, want first preference Windows", comp.RecommendedOS)
	}
}
