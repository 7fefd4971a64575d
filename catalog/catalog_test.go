package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ortelius/advisor-backend/model"
)

// writeArtifacts lays out a minimal knowledge graph in dir. Individual tests
// overwrite single artifacts to provoke load failures.
func writeArtifacts(t *testing.T, dir string) {
	t.Helper()

	entities := []model.Entity{
		{ID: 1, Name: "Linux", Category: model.CategoryOS},
		{ID: 2, Name: "Java", Category: model.CategoryLang},
		{ID: 3, Name: "Tomcat", Category: model.CategoryAppServer},
		{ID: 4, Name: "Duplicate", Category: model.CategoryLang},
		{ID: 5, Name: "Duplicate", Category: model.CategoryLang},
	}
	versions := []model.VersionRecord{
		{EntityID: 2, Version: "8"},
		{EntityID: 2, Version: "17"},
		{EntityID: 2, Version: "11"},
	}
	edges := []model.CompatibilityEdge{
		{OSID: 1, TechID: 2},
		{OSID: 1, TechID: 3},
	}
	images := []model.Image{
		{Name: "tomcat", Tag: "10", OSID: 1, AppServerIDs: []int{3}, LangIDs: []int{2}, Official: true},
		{Name: "ubuntu", Tag: "24.04", OSID: 1, Official: true},
	}

	writeJSON(t, filepath.Join(dir, EntitiesFile), entities)
	writeJSON(t, filepath.Join(dir, VersionsFile), versions)
	writeJSON(t, filepath.Join(dir, CompatibilitiesFile), edges)
	if err := os.MkdirAll(filepath.Join(dir, ImagesDir), 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, ImagesDir, "dockerhub.json"), images)
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

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if e := s.EntityByID(2); e == nil || e.Name != "Java" {
		t.Errorf("EntityByID(2) = %+v, want Java", e)
	}
	if e := s.EntityByName("java"); e == nil || e.ID != 2 {
		t.Errorf("EntityByName(java) = %+v, want entity 2", e)
	}
	if got := s.Summary(); got.Entities != 5 || got.Versions != 3 || got.Compatibilities != 2 {
		t.Errorf("Summary() = %+v", got)
	}
	if got := s.Catalogs(); len(got) != 1 || got[0] != "dockerhub" {
		t.Errorf("Catalogs() = %v", got)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Load on empty dir succeeded")
	}
	if !strings.Contains(err.Error(), EntitiesFile) {
		t.Errorf("error %q does not name the missing artifact", err)
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, dir string)
		want    string
	}{
		{
			name: "duplicate entity id",
			corrupt: func(t *testing.T, dir string) {
				writeJSON(t, filepath.Join(dir, EntitiesFile), []model.Entity{
					{ID: 1, Name: "Linux", Category: model.CategoryOS},
					{ID: 1, Name: "Linux Again", Category: model.CategoryOS},
				})
			},
			want: "duplicate entity id",
		},
		{
			name: "unknown category",
			corrupt: func(t *testing.T, dir string) {
				writeJSON(t, filepath.Join(dir, EntitiesFile), []model.Entity{
					{ID: 1, Name: "Linux", Category: "Mystery"},
				})
			},
			want: "unknown category",
		},
		{
			name: "version references unknown entity",
			corrupt: func(t *testing.T, dir string) {
				writeJSON(t, filepath.Join(dir, VersionsFile), []model.VersionRecord{
					{EntityID: 99, Version: "1.0"},
				})
			},
			want: "unknown entity 99",
		},
		{
			name: "edge references non-OS entity",
			corrupt: func(t *testing.T, dir string) {
				writeJSON(t, filepath.Join(dir, CompatibilitiesFile), []model.CompatibilityEdge{
					{OSID: 2, TechID: 3},
				})
			},
			want: "non-OS entity 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeArtifacts(t, dir)
			tt.corrupt(t, dir)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load succeeded on broken artifact")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestComputeLatest(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	latest, ok := s.LatestVersion(2)
	if !ok || latest != "17" {
		t.Errorf("LatestVersion(2) = %q, %v, want 17", latest, ok)
	}
	marked := 0
	for _, v := range s.VersionsOf(2) {
		if v.IsLatest {
			marked++
			if v.Version != "17" {
				t.Errorf("IsLatest on %q, want 17", v.Version)
			}
		}
	}
	if marked != 1 {
		t.Errorf("%d versions flagged latest, want 1", marked)
	}
	if _, ok := s.LatestVersion(1); ok {
		t.Error("LatestVersion(1) returned a version for an entity with no history")
	}
}

func TestEntityByNameAmbiguous(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e := s.EntityByName("Duplicate"); e != nil {
		t.Errorf("EntityByName(Duplicate) = %+v, want nil for ambiguous name", e)
	}
}

func TestImagesFor(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	imgs := s.ImagesFor("dockerhub", 3)
	if len(imgs) != 1 || imgs[0].Name != "tomcat" {
		t.Errorf("ImagesFor(dockerhub, 3) = %+v, want the tomcat image", imgs)
	}
	if imgs := s.ImagesFor("dockerhub", 99); len(imgs) != 0 {
		t.Errorf("ImagesFor unknown entity = %+v, want none", imgs)
	}
	if imgs := s.ImagesFor("quay", 3); imgs != nil {
		t.Errorf("ImagesFor unknown catalog = %+v, want nil", imgs)
	}
}

func TestCompatibleOS(t *testing.T) {
	dir := t.TempDir()
	writeArtifacts(t, dir)
	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	oses := s.CompatibleOS(2)
	if len(oses) != 1 || oses[0].Name != "Linux" {
		t.Errorf("CompatibleOS(2) = %+v, want Linux", oses)
	}
	if oses := s.CompatibleOS(1); len(oses) != 0 {
		t.Errorf("CompatibleOS(1) = %+v, want none", oses)
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10.5", "9.7", 1},
		{"1.4.2", "1.4.10", -1},
		{"1.4.2.17", "1.4.2.4", 1},
		{"2008 R2", "2008", 1},
		{"1.0.0", "1.0.0", 0},
		{"10.1", "10.5", -1},
		{"8", "17", -1},
		{"7.9", "7.9", 0},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
