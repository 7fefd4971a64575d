// Package infer annotates standardized component records with implied parent
// technologies and operating-system compatibility.
package infer

import (
	"sort"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/standardize"
	"github.com/ortelius/advisor-backend/model"
	"github.com/ortelius/advisor-backend/util"
)

// Parent-inference rules: a child category whose hierarchy path implies an
// entity in one of the allowed parent categories.
var parentRules = []struct {
	child   model.Category
	parents []model.Category
}{
	{model.CategoryLib, []model.Category{model.CategoryLang}},
	{model.CategoryPlugin, []model.Category{model.CategoryApp}},
	{model.CategoryRunlib, []model.Category{model.CategoryAppServer, model.CategoryRuntime}},
}

// Categories whose technologies constrain the operating-system choice.
var osConstrainingCategories = []model.Category{
	model.CategoryLang,
	model.CategoryApp,
	model.CategoryAppServer,
	model.CategoryRuntime,
}

// Engine derives missing technologies and the recommended OS family for a
// component.
type Engine struct {
	store *catalog.Store
	prefs []string // OS family preference order
}

// New returns an inference engine using the given OS family preference order.
func New(store *catalog.Store, prefs []string) *Engine {
	return &Engine{store: store, prefs: prefs}
}

// Apply runs parent inference and OS-compatibility propagation in place.
func (e *Engine) Apply(comp *model.Component) {
	e.inferParents(comp)
	e.resolveOS(comp)
}

// inferParents adds the parent technology implied by a hierarchical child
// name ("JavaScript|AngularJS" implies the JavaScript language). An
// ambiguous parent (absent from the catalog, or carried by more than one
// entity) is never auto-resolved; the child simply stays as-is.
func (e *Engine) inferParents(comp *model.Component) {
	for _, rule := range parentRules {
		bucket := comp.BucketIfPresent(rule.child)
		if bucket.Len() == 0 {
			continue
		}
		bucket.Each(func(_ string, tech model.StandardizedTech) bool {
			child := e.store.EntityByID(tech.EntityID)
			if child == nil {
				return true
			}
			parentName := child.Parent()
			if parentName == "" {
				return true
			}
			parent := e.store.EntityByName(parentName)
			if parent == nil {
				return true
			}
			allowed := false
			for _, cat := range rule.parents {
				if parent.Category == cat {
					allowed = true
					break
				}
			}
			if !allowed {
				return true
			}
			target := comp.Bucket(parent.Category)
			if target.HasEntity(parent.ID) {
				return true
			}
			standardized := standardize.NAVersion
			if latest, ok := e.store.LatestVersion(parent.ID); ok {
				standardized = latest
			}
			target.Set(parent.Name, model.StandardizedTech{
				Name:                parent.Name,
				EntityID:            parent.ID,
				DetectedVersion:     standardize.NAVersion,
				StandardizedVersion: standardized,
				Inferred:            true,
			})
			return true
		})
	}
}

// resolveOS intersects the compatible OS-family sets of every detected
// Language, App, AppServer and Runtime technology, records the per-family
// compatible subsets for the planner, and picks the recommended family.
func (e *Engine) resolveOS(comp *model.Component) {
	famTech := make(map[string][]string)
	var inter map[string]bool
	started := false

	for _, cat := range osConstrainingCategories {
		bucket := comp.BucketIfPresent(cat)
		if bucket.Len() == 0 {
			continue
		}
		bucket.Each(func(_ string, tech model.StandardizedTech) bool {
			fams := make(map[string]bool)
			for _, osEnt := range e.store.CompatibleOS(tech.EntityID) {
				fams[osEnt.Root()] = true
			}
			if len(fams) == 0 {
				// No known edges: the technology cannot be placed on any
				// base OS, so it must not collapse the intersection.
				comp.IncompatibleTech = append(comp.IncompatibleTech, tech.Name)
				return true
			}
			for f := range fams {
				if !util.Contains(famTech[f], tech.Name) {
					famTech[f] = append(famTech[f], tech.Name)
				}
			}
			if !started {
				inter = fams
				started = true
				return true
			}
			for f := range inter {
				if !fams[f] {
					delete(inter, f)
				}
			}
			return true
		})
	}

	if len(famTech) > 0 {
		comp.OSFamilyTech = famTech
	}

	if !started || len(inter) == 0 {
		// Empty intersection: no single family fits every technology, the
		// recommendation stays unset and planning may split per family. The
		// technologies outside the best-ranked family are recorded as
		// incompatible with it.
		if started {
			e.recordConflicts(comp, famTech)
		}
		return
	}

	comp.RecommendedOS = e.chooseFamily(comp, inter)
}

// recordConflicts handles a conflicting component: the highest-ranked family
// in the per-family split becomes the reference, and every technology it
// cannot carry joins IncompatibleTech.
func (e *Engine) recordConflicts(comp *model.Component, famTech map[string][]string) {
	fams := make([]string, 0, len(famTech))
	for f := range famTech {
		fams = append(fams, f)
	}
	sort.Slice(fams, func(i, j int) bool {
		pi, pj := e.famRank(fams[i]), e.famRank(fams[j])
		if pi != pj {
			return pi < pj
		}
		return fams[i] < fams[j]
	})

	primary := famTech[fams[0]]
	for _, f := range fams[1:] {
		for _, tech := range famTech[f] {
			if util.Contains(primary, tech) || util.Contains(comp.IncompatibleTech, tech) {
				continue
			}
			comp.IncompatibleTech = append(comp.IncompatibleTech, tech)
		}
	}
}

func (e *Engine) famRank(fam string) int {
	for i, f := range e.prefs {
		if f == fam {
			return i
		}
	}
	return len(e.prefs)
}

// chooseFamily picks from the intersection: the detected OS's family when it
// qualifies, then the configured preference order, then lexicographic.
func (e *Engine) chooseFamily(comp *model.Component, inter map[string]bool) string {
	if osBucket := comp.BucketIfPresent(model.CategoryOS); osBucket.Len() > 0 {
		detected := ""
		osBucket.Each(func(_ string, tech model.StandardizedTech) bool {
			if ent := e.store.EntityByID(tech.EntityID); ent != nil {
				detected = ent.Root()
				return false
			}
			return true
		})
		if detected != "" && inter[detected] {
			return detected
		}
	}
	for _, f := range e.prefs {
		if inter[f] {
			return f
		}
	}
	fams := make([]string, 0, len(inter))
	for f := range inter {
		fams = append(fams, f)
	}
	sort.Strings(fams)
	return fams[0]
}
