package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/internal/infer"
	"github.com/ortelius/advisor-backend/internal/plan"
	"github.com/ortelius/advisor-backend/internal/standardize"
	"github.com/ortelius/advisor-backend/model"
	"github.com/ortelius/advisor-backend/util"
)

var logger = catalog.Logger()

// Assessor runs the full pipeline (extraction, standardization, version
// resolution, inference, planning) over component records. It holds only
// read-only state and may serve concurrent requests.
type Assessor struct {
	store   *catalog.Store
	std     *standardize.Standardizer
	inf     *infer.Engine
	planner *plan.Planner
}

// NewAssessor wires the pipeline stages for a catalog store and profile.
func NewAssessor(store *catalog.Store, profile Profile) *Assessor {
	return &Assessor{
		store:   store,
		std:     standardize.New(store, profile.StandardizerConfig()),
		inf:     infer.New(store, profile.OSPreference),
		planner: plan.New(store, profile.Weights, profile.OSPreference),
	}
}

// BatchOptions controls batch processing. Catalog selects the image catalog
// for planning ("" skips planning); Workers > 1 fans records out to a
// goroutine pool, one record per worker. Records are independent, ordering
// matters only within a record's own stages.
type BatchOptions struct {
	Catalog string
	Workers int
}

// AssessComponent runs the pipeline stages a–d for one raw component record.
// Non-string field values are skipped, never fatal for the record.
func (a *Assessor) AssessComponent(raw map[string]interface{}) *model.Component {
	comp := &model.Component{Field: make(map[string]string)}

	if v, ok := raw["app_id"].(string); ok {
		comp.AppID = v
	}
	if v, ok := raw["name"].(string); ok {
		comp.Name = v
	} else if v, ok := raw["application_name"].(string); ok {
		comp.Name = v
	}
	if v, ok := raw["component_name"].(string); ok && comp.Name == "" {
		comp.Name = v
	}

	var parts []string
	for _, field := range model.TechStackFields {
		val, present := raw[field]
		if !present || val == nil {
			continue
		}
		text, ok := val.(string)
		if !ok {
			logger.Sugar().Debugf("Component %q: skipping non-string field %q", comp.Name, field)
			continue
		}
		if util.IsEmpty(text) {
			continue
		}
		comp.Field[field] = text
		parts = append(parts, text)
	}
	if len(comp.Field) == 0 {
		comp.Field = nil
	}

	a.std.Apply(comp, strings.Join(parts, ","))
	a.inf.Apply(comp)
	return comp
}

// Plan runs the planning stage for an already-assessed component.
func (a *Assessor) Plan(comp *model.Component, catalogName string) error {
	return a.planner.Plan(comp, catalogName)
}

// AssessAll processes a batch of raw component records. Each record runs its
// stages in pipeline order; records themselves are independent and may run
// in parallel.
func (a *Assessor) AssessAll(raws []map[string]interface{}, opts BatchOptions) ([]*model.Component, error) {
	if opts.Catalog != "" && !a.store.HasCatalog(opts.Catalog) {
		return nil, fmt.Errorf("unknown image catalog %q (have %s)",
			opts.Catalog, strings.Join(a.store.Catalogs(), ", "))
	}

	out := make([]*model.Component, len(raws))
	process := func(i int) {
		comp := a.AssessComponent(raws[i])
		if opts.Catalog != "" {
			if err := a.planner.Plan(comp, opts.Catalog); err != nil {
				// Catalog existence was validated above; log and keep going.
				logger.Sugar().Warnf("Planning component %q: %v", comp.Name, err)
			}
		}
		out[i] = comp
	}

	if opts.Workers <= 1 || len(raws) < 2 {
		for i := range raws {
			process(i)
		}
		return out, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := opts.Workers
	if workers > len(raws) {
		workers = len(raws)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				process(i)
			}
		}()
	}
	for i := range raws {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out, nil
}
