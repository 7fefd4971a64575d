package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/model"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()

	entities := []model.Entity{
		{ID: 1, Name: "Linux", Category: model.CategoryOS},
		{ID: 2, Name: "Java", Category: model.CategoryLang},
		{ID: 3, Name: "DB2", Category: model.CategoryApp},
		{ID: 4, Name: "Tomcat", Category: model.CategoryAppServer},
	}
	versions := []model.VersionRecord{
		{EntityID: 3, Version: "9.7"},
		{EntityID: 3, Version: "10.0"},
		{EntityID: 3, Version: "10.5"},
	}
	edges := []model.CompatibilityEdge{
		{OSID: 1, TechID: 2},
		{OSID: 1, TechID: 3},
		{OSID: 1, TechID: 4},
	}
	images := []model.Image{
		{Name: "tomcat", Tag: "9.0", OSID: 1, AppServerIDs: []int{4}, LangIDs: []int{2}, Official: true},
		{Name: "db2", Namespace: "ibmcom", Tag: "11.5", OSID: 1, AppIDs: []int{3}, Certified: true},
		{Name: "ubuntu", Tag: "24.04", OSID: 1, Official: true},
	}

	writeJSON(t, filepath.Join(dir, catalog.EntitiesFile), entities)
	writeJSON(t, filepath.Join(dir, catalog.VersionsFile), versions)
	writeJSON(t, filepath.Join(dir, catalog.CompatibilitiesFile), edges)
	if err := os.MkdirAll(filepath.Join(dir, catalog.ImagesDir), 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, catalog.ImagesDir, "dockerhub.json"), images)

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

func newAssessor(t *testing.T) *Assessor {
	return NewAssessor(newTestStore(t), DefaultProfile())
}

func TestAssessComponentSkipsNonStringFields(t *testing.T) {
	a := newAssessor(t)
	comp := a.AssessComponent(map[string]interface{}{
		"name":               "billing",
		"middleware":         42,
		"database":           "db2 10.0",
		"technology_summary": nil,
	})

	if comp.Name != "billing" {
		t.Errorf("Name = %q", comp.Name)
	}
	if _, ok := comp.Field["middleware"]; ok {
		t.Error("non-string middleware field kept")
	}
	if comp.Field["database"] != "db2 10.0" {
		t.Errorf("Field = %v", comp.Field)
	}

	tech, ok := comp.App.Get("db2 10.0")
	if !ok {
		t.Fatalf("db2 mention not standardized: %+v", comp.App)
	}
	if tech.Name != "DB2" || tech.DetectedVersion != "10.0" || tech.StandardizedVersion != "10.5" {
		t.Errorf("tech = %+v", tech)
	}
	if comp.RecommendedOS != "Linux" {
		t.Errorf("RecommendedOS = %q", comp.RecommendedOS)
	}
}

func TestAssessComponentNameFallback(t *testing.T) {
	a := newAssessor(t)
	comp := a.AssessComponent(map[string]interface{}{
		"application_name": "ledger",
		"component_name":   "ledger-api",
	})
	if comp.Name != "ledger" {
		t.Errorf("Name = %q, want application_name to win", comp.Name)
	}

	comp = a.AssessComponent(map[string]interface{}{"component_name": "ledger-api"})
	if comp.Name != "ledger-api" {
		t.Errorf("Name = %q", comp.Name)
	}
}

func TestAssessAllUnknownCatalog(t *testing.T) {
	a := newAssessor(t)
	_, err := a.AssessAll([]map[string]interface{}{{"name": "x"}}, BatchOptions{Catalog: "quay"})
	if err == nil {
		t.Fatal("AssessAll accepted an unknown catalog")
	}
	if !strings.Contains(err.Error(), "unknown image catalog") {
		t.Errorf("error = %q", err)
	}
}

func TestAssessAllSkipsPlanningWithoutCatalog(t *testing.T) {
	a := newAssessor(t)
	out, err := a.AssessAll([]map[string]interface{}{
		{"name": "x", "database": "db2"},
	}, BatchOptions{})
	if err != nil {
		t.Fatalf("AssessAll: %v", err)
	}
	if out[0].Plan != nil {
		t.Errorf("Plan = %+v, want nil without a catalog", out[0].Plan)
	}
}

func TestAssessAllWorkerPoolMatchesSequential(t *testing.T) {
	a := newAssessor(t)
	raws := []map[string]interface{}{
		{"name": "a", "database": "db2 10.0", "middleware": "tomcat"},
		{"name": "b", "programming_languages": "java"},
		{"name": "c", "operating_system": "linux", "middleware": "frobnicator"},
		{"name": "d", "database": "db2"},
		{"name": "e"},
		{"name": "f", "middleware": "tomcat", "programming_languages": "java"},
	}
	opts := BatchOptions{Catalog: "dockerhub"}

	seq, err := a.AssessAll(raws, opts)
	if err != nil {
		t.Fatalf("sequential AssessAll: %v", err)
	}
	opts.Workers = 3
	par, err := a.AssessAll(raws, opts)
	if err != nil {
		t.Fatalf("parallel AssessAll: %v", err)
	}

	want, err := json.Marshal(seq)
	if err != nil {
		t.Fatal(err)
	}
	got, err := json.Marshal(par)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("parallel output differs from sequential:\n%s\nvs\n%s", got, want)
	}
}

func TestPlanStage(t *testing.T) {
	a := newAssessor(t)
	comp := a.AssessComponent(map[string]interface{}{
		"name":     "billing",
		"database": "db2",
	})
	if err := a.Plan(comp, "dockerhub"); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if comp.Plan == nil || len(comp.Plan.Images) == 0 {
		t.Fatalf("Plan = %+v", comp.Plan)
	}
	if comp.Plan.Images[0].Name != "db2" {
		t.Errorf("image = %q", comp.Plan.Images[0].Name)
	}
}
