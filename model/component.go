package model

import (
	"bytes"
	"encoding/json"
)

// Mention is a normalized candidate technology reference extracted from a
// free-text field. Fragments generated from the same multi-word mention share
// a combination Group id (0 means standalone); Start and End are word indexes
// into the original mention, used to discard shorter overlapping fragments
// once the longest one matches.
type Mention struct {
	Raw   string
	Text  string
	Group int
	Start int
	End   int
}

// Words returns the fragment length in words.
func (m Mention) Words() int { return m.End - m.Start }

// MatchCandidate pairs a catalog entity with its similarity score for one
// mention. A nil Entity with Name "NA_CATEGORY" is the below-floor
// placeholder.
type MatchCandidate struct {
	Entity   *Entity  `json:"-"`
	EntityID int      `json:"entity_id"`
	Name     string   `json:"name"`
	Category Category `json:"category,omitempty"`
	Score    float64  `json:"score"`
}

// StandardizedTech is one resolved technology under a component's category
// bucket.
type StandardizedTech struct {
	Name                string  `json:"standard_name"`
	EntityID            int     `json:"entity_id"`
	DetectedVersion     string  `json:"detected_version,omitempty"`
	StandardizedVersion string  `json:"standardized_version,omitempty"`
	Score               float64 `json:"score,omitempty"`
	Inferred            bool    `json:"inferred,omitempty"`
}

// Bucket is an insertion-ordered mapping of mention text to its standardized
// technology. Several matching rules depend on first-inserted-wins semantics,
// so the ordering is explicit rather than incidental.
type Bucket struct {
	keys    []string
	entries map[string]StandardizedTech
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{entries: make(map[string]StandardizedTech)}
}

// Set inserts or overwrites the entry for a mention, preserving the position
// of the first insertion.
func (b *Bucket) Set(mention string, tech StandardizedTech) {
	if _, ok := b.entries[mention]; !ok {
		b.keys = append(b.keys, mention)
	}
	b.entries[mention] = tech
}

// Get returns the entry for a mention.
func (b *Bucket) Get(mention string) (StandardizedTech, bool) {
	if b == nil {
		return StandardizedTech{}, false
	}
	t, ok := b.entries[mention]
	return t, ok
}

// Has reports whether the mention is present.
func (b *Bucket) Has(mention string) bool {
	if b == nil {
		return false
	}
	_, ok := b.entries[mention]
	return ok
}

// HasEntity reports whether any entry resolves to the given entity.
func (b *Bucket) HasEntity(entityID int) bool {
	for _, t := range b.entries {
		if t.EntityID == entityID {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Keys returns the mention texts in insertion order.
func (b *Bucket) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (b *Bucket) Each(fn func(mention string, tech StandardizedTech) bool) {
	if b == nil {
		return
	}
	for _, k := range b.keys {
		if !fn(k, b.entries[k]) {
			return
		}
	}
}

// MarshalJSON encodes the bucket as a JSON object in insertion order.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the bucket. Insertion order
// follows the document order of the object keys.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	b.keys = nil
	b.entries = make(map[string]StandardizedTech)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var tech StandardizedTech
		if err := dec.Decode(&tech); err != nil {
			return err
		}
		b.Set(key, tech)
	}
	_, err := dec.Token() // closing brace
	return err
}

// CandidateMap is an insertion-ordered mapping of mention text to the full
// candidate list kept for low/medium confidence matches.
type CandidateMap struct {
	keys    []string
	entries map[string][]MatchCandidate
}

// NewCandidateMap returns an empty candidate map.
func NewCandidateMap() *CandidateMap {
	return &CandidateMap{entries: make(map[string][]MatchCandidate)}
}

// Set records the candidate list for a mention, first insertion wins the slot.
func (c *CandidateMap) Set(mention string, cands []MatchCandidate) {
	if _, ok := c.entries[mention]; !ok {
		c.keys = append(c.keys, mention)
	}
	c.entries[mention] = cands
}

// Get returns the candidates recorded for a mention.
func (c *CandidateMap) Get(mention string) ([]MatchCandidate, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.entries[mention]
	return v, ok
}

// Has reports whether the mention is present.
func (c *CandidateMap) Has(mention string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[mention]
	return ok
}

// Len returns the number of entries.
func (c *CandidateMap) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the mention texts in insertion order.
func (c *CandidateMap) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (c *CandidateMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PlannedImage is one container image chosen by the planning engine.
type PlannedImage struct {
	Name      string `json:"name"`
	Ref       string `json:"ref,omitempty"`
	URL       string `json:"url,omitempty"`
	Purl      string `json:"purl,omitempty"`
	OSFamily  string `json:"os_family,omitempty"`
	Certified bool   `json:"certified,omitempty"`
	Official  bool   `json:"official,omitempty"`
	Base      bool   `json:"base,omitempty"`
}

// PlanResult is the planning engine's output for one component.
type PlanResult struct {
	Catalog        string            `json:"catalog"`
	Images         []PlannedImage    `json:"images"`
	BestMatch      map[string]string `json:"best_match,omitempty"`
	Confidence     float64           `json:"confidence"`
	CustomInstalls []string          `json:"custom_installs,omitempty"`
	CustomImages   []string          `json:"custom_images,omitempty"`
	Reason         string            `json:"reason,omitempty"`
}

// Component is one application/component record. It is created once per
// input record and mutated in place by each pipeline stage; it is never
// shared across requests.
type Component struct {
	AppID string            `json:"app_id,omitempty"`
	Name  string            `json:"name,omitempty"`
	Field map[string]string `json:"fields,omitempty"`

	OS        *Bucket `json:"os,omitempty"`
	Lang      *Bucket `json:"lang,omitempty"`
	Lib       *Bucket `json:"lib,omitempty"`
	App       *Bucket `json:"app,omitempty"`
	AppServer *Bucket `json:"app_server,omitempty"`
	Runtime   *Bucket `json:"runtime,omitempty"`
	Runlib    *Bucket `json:"runlib,omitempty"`
	Plugin    *Bucket `json:"plugin,omitempty"`
	VM        *Bucket `json:"vm,omitempty"`
	HW        *Bucket `json:"hw,omitempty"`
	Storage   *Bucket `json:"storage,omitempty"`
	General   *Bucket `json:"general_technology,omitempty"`

	Unknown             []string      `json:"unknown,omitempty"`
	LowMediumConfidence *CandidateMap `json:"low_medium_confidence,omitempty"`

	RecommendedOS    string              `json:"recommended_os,omitempty"`
	OSFamilyTech     map[string][]string `json:"os_family_tech,omitempty"`
	IncompatibleTech []string            `json:"incompatible_tech,omitempty"`

	Plan *PlanResult `json:"plan,omitempty"`
}

// Bucket returns the category bucket, creating it on first use.
func (c *Component) Bucket(cat Category) *Bucket {
	slot := c.bucketSlot(cat)
	if slot == nil {
		return nil
	}
	if *slot == nil {
		*slot = NewBucket()
	}
	return *slot
}

// BucketIfPresent returns the category bucket without creating it.
func (c *Component) BucketIfPresent(cat Category) *Bucket {
	slot := c.bucketSlot(cat)
	if slot == nil {
		return nil
	}
	return *slot
}

func (c *Component) bucketSlot(cat Category) **Bucket {
	switch cat {
	case CategoryOS:
		return &c.OS
	case CategoryLang:
		return &c.Lang
	case CategoryLib:
		return &c.Lib
	case CategoryApp:
		return &c.App
	case CategoryAppServer:
		return &c.AppServer
	case CategoryRuntime:
		return &c.Runtime
	case CategoryRunlib:
		return &c.Runlib
	case CategoryPlugin:
		return &c.Plugin
	case CategoryVM:
		return &c.VM
	case CategoryHW:
		return &c.HW
	case CategoryStorage:
		return &c.Storage
	case CategoryGeneral:
		return &c.General
	}
	return nil
}

// HasMention reports whether the mention already landed in any category
// bucket. A mention appears in at most one bucket after de-duplication.
func (c *Component) HasMention(mention string) bool {
	for _, cat := range Categories {
		if b := c.BucketIfPresent(cat); b.Len() > 0 && b.Has(mention) {
			return true
		}
	}
	return false
}

// AddUnknown records a mention with no confident match, once.
func (c *Component) AddUnknown(mention string) {
	for _, u := range c.Unknown {
		if u == mention {
			return
		}
	}
	c.Unknown = append(c.Unknown, mention)
}
