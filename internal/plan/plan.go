// Package plan selects container images for a standardized component and
// scores how much of its technology stack the selection covers.
package plan

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/model"
	"github.com/ortelius/advisor-backend/util"
	"github.com/package-url/packageurl-go"
)

// Weights are the per-category contributions to the confidence score. The OS
// weighs heaviest, apps and app servers next, runtimes and languages least;
// unknown mentions add a flat per-item weight to the denominator only.
type Weights struct {
	OS        float64
	App       float64
	AppServer float64
	Runtime   float64
	Lang      float64
	Unknown   float64
}

// DefaultWeights returns the documented scoring defaults.
func DefaultWeights() Weights {
	return Weights{OS: 4, App: 2, AppServer: 2, Runtime: 1, Lang: 1, Unknown: 0.5}
}

// Planner chooses images from one image catalog.
type Planner struct {
	store *catalog.Store
	w     Weights
	prefs []string
}

// New returns a planner with the given weights and OS family preference
// order (used when a component splits across families).
func New(store *catalog.Store, w Weights, prefs []string) *Planner {
	return &Planner{store: store, w: w, prefs: prefs}
}

// requirement is one technology the plan must cover.
type requirement struct {
	entityID int
	name     string
	category model.Category
}

// Plan fills comp.Plan for the named image catalog. A component with no
// resolvable OS or no technology requirements still gets a valid, weak plan
// with confidence 0 and a reason string; only an unknown catalog is an error.
func (p *Planner) Plan(comp *model.Component, catalogName string) error {
	if !p.store.HasCatalog(catalogName) {
		return fmt.Errorf("unknown image catalog %q (have %s)",
			catalogName, strings.Join(p.store.Catalogs(), ", "))
	}

	families := p.targetFamilies(comp)
	if len(families) == 0 {
		comp.Plan = &model.PlanResult{
			Catalog:    catalogName,
			Images:     []model.PlannedImage{},
			Confidence: 0,
			Reason:     "no compatible operating system resolved for this component",
		}
		return nil
	}

	result := &model.PlanResult{
		Catalog:   catalogName,
		Images:    []model.PlannedImage{},
		BestMatch: make(map[string]string),
	}

	var achieved, total float64
	for _, fam := range families {
		a, t := p.planFamily(comp, catalogName, fam, len(families) > 1, result)
		achieved += a
		total += t
	}

	// Unknown mentions weigh on the denominator once per component.
	total += p.w.Unknown * float64(len(comp.Unknown))

	if total == 0 {
		result.Confidence = 0
		result.Reason = "no technology requirements detected"
	} else {
		result.Confidence = round3(achieved / total)
	}
	if len(result.Images) == 0 && result.Reason == "" {
		result.Reason = "no catalog image matches this component; base install required"
	}
	if len(result.BestMatch) == 0 {
		result.BestMatch = nil
	}
	comp.Plan = result
	return nil
}

// targetFamilies returns the OS families to plan for: the recommended family
// when the intersection produced one, otherwise up to two families from the
// per-family compatibility split, preference order first.
func (p *Planner) targetFamilies(comp *model.Component) []string {
	if comp.RecommendedOS != "" {
		return []string{comp.RecommendedOS}
	}
	if len(comp.OSFamilyTech) == 0 {
		return nil
	}
	var fams []string
	for f := range comp.OSFamilyTech {
		fams = append(fams, f)
	}
	sort.Slice(fams, func(i, j int) bool {
		pi, pj := prefRank(p.prefs, fams[i]), prefRank(p.prefs, fams[j])
		if pi != pj {
			return pi < pj
		}
		return fams[i] < fams[j]
	})
	if len(fams) > 2 {
		fams = fams[:2]
	}
	return fams
}

func prefRank(prefs []string, fam string) int {
	for i, f := range prefs {
		if f == fam {
			return i
		}
	}
	return len(prefs)
}

// planFamily selects images for one OS family and returns the achieved and
// total weighted sums for that sub-plan.
func (p *Planner) planFamily(comp *model.Component, catalogName, family string, split bool, result *model.PlanResult) (achieved, total float64) {
	reqs := p.requirements(comp, family, split)

	var langReqs []requirement
	var selected []model.Image

	selectedCovers := func(id int) bool {
		for _, im := range selected {
			if im.Covers(id) {
				return true
			}
		}
		return false
	}

	// App Server, App and Runtime requirements in matching order; images
	// already selected accumulate further technologies before any new image
	// is pulled in.
	order := []model.Category{model.CategoryAppServer, model.CategoryApp, model.CategoryRuntime}
	for _, req := range reqs {
		switch req.category {
		case model.CategoryLang:
			langReqs = append(langReqs, req)
			total += p.weightOf(req.category)
		case model.CategoryOS:
			total += p.weightOf(req.category)
		default:
			total += p.weightOf(req.category)
		}
	}

	for _, cat := range order {
		for _, req := range reqs {
			if req.category != cat {
				continue
			}
			if selectedCovers(req.entityID) {
				for _, im := range selected {
					if im.Covers(req.entityID) {
						result.BestMatch[req.name] = im.Ref()
						break
					}
				}
				achieved += p.weightOf(cat)
				continue
			}
			img, ok := p.pickImage(catalogName, family, req.entityID, nil)
			if !ok {
				p.recordUnmet(result, req)
				continue
			}
			selected = append(selected, img)
			result.Images = append(result.Images, p.planned(img, family, false))
			result.BestMatch[req.name] = img.Ref()
			achieved += p.weightOf(cat)
		}
	}

	// Language coverage counts once per matched image, even when one image
	// carries several of the required languages.
	langIDs := make([]int, 0, len(langReqs))
	for _, r := range langReqs {
		langIDs = append(langIDs, r.entityID)
	}
	langImages := 0
	coveredLangs := make(map[int]bool)
	for _, im := range selected {
		if im.CoversAnyLang(langIDs) {
			langImages++
			for _, id := range im.LangIDs {
				coveredLangs[id] = true
			}
		}
	}
	appImageSelected := func() bool {
		for _, im := range selected {
			if len(im.AppIDs) > 0 || len(im.AppServerIDs) > 0 {
				return true
			}
		}
		return false
	}
	for _, r := range langReqs {
		if coveredLangs[r.entityID] {
			continue
		}
		// A pure-language base image only applies when no App/AppServer
		// image claimed the component already.
		if !appImageSelected() {
			img, ok := p.pickImage(catalogName, family, r.entityID, func(im model.Image) bool {
				return len(im.AppIDs) == 0 && len(im.AppServerIDs) == 0
			})
			if ok {
				selected = append(selected, img)
				result.Images = append(result.Images, p.planned(img, family, false))
				result.BestMatch[r.name] = img.Ref()
				langImages++
				for _, id := range img.LangIDs {
					coveredLangs[id] = true
				}
				continue
			}
		}
		if !util.Contains(result.CustomInstalls, r.name) {
			result.CustomInstalls = append(result.CustomInstalls, r.name)
		}
	}
	if langImages > len(langReqs) {
		langImages = len(langReqs)
	}
	achieved += p.w.Lang * float64(langImages)

	// Nothing matched: fall back to the family's bare base image.
	if len(selected) == 0 {
		for _, im := range p.store.ImagesInCatalog(catalogName) {
			if im.IsBase() && p.store.OSFamilyOf(im.OSID) == family {
				selected = append(selected, im)
				result.Images = append(result.Images, p.planned(im, family, true))
				break
			}
		}
	}

	if len(selected) > 0 {
		achieved += p.w.OS
	}
	return achieved, total
}

// requirements lists the component's technologies for one family. During a
// split plan only the technologies compatible with that family participate.
func (p *Planner) requirements(comp *model.Component, family string, split bool) []requirement {
	inFamily := func(name string) bool {
		if !split {
			return true
		}
		return util.Contains(comp.OSFamilyTech[family], name)
	}

	reqs := []requirement{{category: model.CategoryOS, name: family}}
	for _, cat := range []model.Category{model.CategoryAppServer, model.CategoryApp, model.CategoryRuntime, model.CategoryLang} {
		bucket := comp.BucketIfPresent(cat)
		if bucket.Len() == 0 {
			continue
		}
		seen := make(map[int]bool)
		bucket.Each(func(_ string, tech model.StandardizedTech) bool {
			if seen[tech.EntityID] || !inFamily(tech.Name) {
				return true
			}
			seen[tech.EntityID] = true
			reqs = append(reqs, requirement{entityID: tech.EntityID, name: tech.Name, category: cat})
			return true
		})
	}
	return reqs
}

// pickImage chooses the best candidate image providing an entity on the
// given family: certified or officially published images win ties, then
// catalog order.
func (p *Planner) pickImage(catalogName, family string, entityID int, accept func(model.Image) bool) (model.Image, bool) {
	var best model.Image
	found := false
	for _, im := range p.store.ImagesFor(catalogName, entityID) {
		if p.store.OSFamilyOf(im.OSID) != family {
			continue
		}
		if accept != nil && !accept(im) {
			continue
		}
		if !found {
			best = im
			found = true
			continue
		}
		if (im.Certified || im.Official) && !(best.Certified || best.Official) {
			best = im
		}
	}
	return best, found
}

func (p *Planner) recordUnmet(result *model.PlanResult, req requirement) {
	switch req.category {
	case model.CategoryApp, model.CategoryAppServer:
		if !util.Contains(result.CustomImages, req.name) {
			result.CustomImages = append(result.CustomImages, req.name)
		}
	default:
		if !util.Contains(result.CustomInstalls, req.name) {
			result.CustomInstalls = append(result.CustomInstalls, req.name)
		}
	}
}

func (p *Planner) planned(im model.Image, family string, base bool) model.PlannedImage {
	return model.PlannedImage{
		Name:      im.Name,
		Ref:       im.Ref(),
		URL:       im.URL,
		Purl:      ImagePurl(im),
		OSFamily:  family,
		Certified: im.Certified,
		Official:  im.Official,
		Base:      base,
	}
}

func (p *Planner) weightOf(cat model.Category) float64 {
	switch cat {
	case model.CategoryOS:
		return p.w.OS
	case model.CategoryApp:
		return p.w.App
	case model.CategoryAppServer:
		return p.w.AppServer
	case model.CategoryRuntime:
		return p.w.Runtime
	case model.CategoryLang:
		return p.w.Lang
	}
	return 0
}

// ImagePurl builds the canonical lowercase docker purl for an image, with
// qualifiers omitted.
func ImagePurl(im model.Image) string {
	purl := packageurl.PackageURL{
		Type:      "docker",
		Namespace: im.Namespace,
		Name:      im.Name,
		Version:   im.Tag,
	}
	return strings.ToLower(purl.ToString())
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
