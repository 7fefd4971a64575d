// Package model defines the catalog records and the component record that
// flows through the standardization, inference, and planning stages.
package model

import "strings"

// Category identifies the kind of technology a catalog entity describes.
type Category string

// The closed set of technology categories carried by the knowledge graph.
const (
	CategoryOS        Category = "OS"
	CategoryLang      Category = "Lang"
	CategoryLib       Category = "Lib"
	CategoryApp       Category = "App"
	CategoryAppServer Category = "AppServer"
	CategoryRuntime   Category = "Runtime"
	CategoryRunlib    Category = "Runlib"
	CategoryPlugin    Category = "Plugin"
	CategoryVM        Category = "VM"
	CategoryHW        Category = "HW"
	CategoryStorage   Category = "Storage"
	CategoryGeneral   Category = "GeneralTechnology"
)

// Categories lists every valid category in a stable order.
var Categories = []Category{
	CategoryOS, CategoryLang, CategoryLib, CategoryApp, CategoryAppServer,
	CategoryRuntime, CategoryRunlib, CategoryPlugin, CategoryVM,
	CategoryHW, CategoryStorage, CategoryGeneral,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Entity is a canonical technology record in the catalog. The name may
// encode a "Parent|Child" hierarchy path, e.g. "Linux|Red Hat Enterprise Linux".
type Entity struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Keywords string   `json:"keywords,omitempty"`
}

// Root returns the top-level segment of the entity's hierarchy path.
func (e Entity) Root() string {
	if i := strings.Index(e.Name, "|"); i >= 0 {
		return e.Name[:i]
	}
	return e.Name
}

// Parent returns the parent segment of a "Parent|Child" name, or "" when the
// name has no hierarchy.
func (e Entity) Parent() string {
	if i := strings.Index(e.Name, "|"); i >= 0 {
		return e.Name[:i]
	}
	return ""
}

// Leaf returns the last segment of the entity's hierarchy path.
func (e Entity) Leaf() string {
	if i := strings.LastIndex(e.Name, "|"); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// VersionRecord is one entry of an entity's version history. IsLatest is
// computed once at catalog load time and never stored in the artifact.
type VersionRecord struct {
	EntityID    int    `json:"entity_id"`
	Version     string `json:"version"`
	ReleaseDate string `json:"release_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	IsLatest    bool   `json:"is_latest,omitempty"`
}

// CompatibilityEdge links a base OS entity to a technology entity known to
// run on it.
type CompatibilityEdge struct {
	OSID   int `json:"os_id"`
	TechID int `json:"tech_id"`
}

// Image is one container image of an image catalog, tagged with the catalog
// entity ids it provides.
type Image struct {
	Name         string `json:"name"`
	Registry     string `json:"registry,omitempty"`
	Namespace    string `json:"namespace,omitempty"`
	Tag          string `json:"tag,omitempty"`
	URL          string `json:"url,omitempty"`
	OSID         int    `json:"os_id"`
	LangIDs      []int  `json:"lang_ids,omitempty"`
	LibIDs       []int  `json:"lib_ids,omitempty"`
	AppIDs       []int  `json:"app_ids,omitempty"`
	AppServerIDs []int  `json:"appserver_ids,omitempty"`
	RuntimeIDs   []int  `json:"runtime_ids,omitempty"`
	RunlibIDs    []int  `json:"runlib_ids,omitempty"`
	PluginIDs    []int  `json:"plugin_ids,omitempty"`
	Certified    bool   `json:"certified,omitempty"`
	Official     bool   `json:"official,omitempty"`
}

// TechIDs returns every technology entity id the image provides, excluding
// the base OS.
func (im Image) TechIDs() []int {
	var ids []int
	ids = append(ids, im.LangIDs...)
	ids = append(ids, im.LibIDs...)
	ids = append(ids, im.AppIDs...)
	ids = append(ids, im.AppServerIDs...)
	ids = append(ids, im.RuntimeIDs...)
	ids = append(ids, im.RunlibIDs...)
	ids = append(ids, im.PluginIDs...)
	return ids
}

// Covers reports whether the image provides the given technology entity.
func (im Image) Covers(entityID int) bool {
	for _, id := range im.TechIDs() {
		if id == entityID {
			return true
		}
	}
	return false
}

// CoversAnyLang reports whether the image provides at least one of the given
// language entity ids.
func (im Image) CoversAnyLang(langIDs []int) bool {
	for _, want := range langIDs {
		for _, id := range im.LangIDs {
			if id == want {
				return true
			}
		}
	}
	return false
}

// IsBase reports whether the image carries only an operating system.
func (im Image) IsBase() bool {
	return len(im.TechIDs()) == 0
}

// Ref returns the registry/namespace/name:tag reference for the image.
func (im Image) Ref() string {
	ref := im.Name
	if im.Namespace != "" {
		ref = im.Namespace + "/" + ref
	}
	if im.Registry != "" {
		ref = im.Registry + "/" + ref
	}
	if im.Tag != "" {
		ref = ref + ":" + im.Tag
	}
	return ref
}
