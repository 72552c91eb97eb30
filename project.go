package reel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// projectDoc is the YAML form of a timeline. Only serializable fields are
// stored; compiled mappings, bindings and dirty flags never are.
type projectDoc struct {
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	ID         string          `yaml:"id"`
	Kind       string          `yaml:"kind"`
	Label      string          `yaml:"label,omitempty"`
	Row        int             `yaml:"row"`
	ZIndex     *int            `yaml:"z_index,omitempty"`
	Start      float64         `yaml:"start"`
	Duration   float64         `yaml:"duration"`
	Enabled    *bool           `yaml:"enabled,omitempty"`
	Visible    *bool           `yaml:"visible,omitempty"`
	TileColor  string          `yaml:"tile_color,omitempty"`
	Source     string          `yaml:"source,omitempty"`
	Parent     string          `yaml:"parent,omitempty"`
	Data       map[string]any  `yaml:"data,omitempty"`
	Automation *automationDoc  `yaml:"automation,omitempty"`
	Animations []automationDoc `yaml:"animations,omitempty"`
}

type automationDoc struct {
	Enabled   *bool         `yaml:"enabled,omitempty"`
	Start     float64       `yaml:"start,omitempty"`
	BaseValue float64       `yaml:"base_value"`
	Mapping   string        `yaml:"mapping,omitempty"`
	Points    []keyframeDoc `yaml:"points,omitempty"`
	Targets   []targetDoc   `yaml:"targets,omitempty"`
}

type keyframeDoc struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
	Ease  string  `yaml:"ease,omitempty"`
}

type targetDoc struct {
	NodeID   string `yaml:"node_id,omitempty"`
	Property string `yaml:"property"`
	Mapping  string `yaml:"mapping,omitempty"`
	Relative bool   `yaml:"relative,omitempty"`
}

// LoadProject reads a YAML project document into a timeline.
func LoadProject(path string) (*MemoryTimeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reel: failed to read project %s: %w", path, err)
	}
	return ParseProject(data)
}

// ParseProject parses a YAML project document into a timeline.
func ParseProject(data []byte) (*MemoryTimeline, error) {
	var doc projectDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reel: failed to parse project YAML: %w", err)
	}

	tl := NewMemoryTimeline()
	for i := range doc.Items {
		d := &doc.Items[i]
		if d.ID == "" {
			return nil, fmt.Errorf("reel: item %d has no id", i)
		}
		if tl.ItemByID(d.ID) != nil {
			return nil, fmt.Errorf("reel: duplicate item id %q", d.ID)
		}
		it, err := d.item()
		if err != nil {
			return nil, err
		}
		tl.Add(it)
	}
	return tl, nil
}

func (d *itemDoc) item() (*Item, error) {
	kind, err := ParseItemKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("reel: item %q: %w", d.ID, err)
	}
	it := NewItem(d.ID, kind)
	it.Label = d.Label
	it.Row = d.Row
	it.ZIndex = d.ZIndex
	it.Start = d.Start
	it.Duration = d.Duration
	it.Disabled = d.Enabled != nil && !*d.Enabled
	it.Hidden = d.Visible != nil && !*d.Visible
	it.Source = d.Source
	it.Parent = d.Parent
	if d.TileColor != "" {
		c, err := ParseHexColor(d.TileColor)
		if err != nil {
			return nil, fmt.Errorf("reel: item %q: %w", d.ID, err)
		}
		it.TileColor = c
	}
	for k, v := range d.Data {
		it.Data[k] = v
	}

	if d.Automation != nil {
		it.Automation = d.Automation.automation()
	}
	if kind == KindAutomation && it.Disabled {
		it.Automation.Enabled = false
	}
	for i := range d.Animations {
		it.Animations = append(it.Animations, d.Animations[i].automation())
	}
	return it, nil
}

func (d *automationDoc) automation() *Automation {
	a := NewAutomation()
	if d.Enabled != nil {
		a.Enabled = *d.Enabled
	}
	a.Start = d.Start
	a.BaseValue = d.BaseValue
	a.SetMapping(d.Mapping)

	points := make([]Keyframe, len(d.Points))
	for i, p := range d.Points {
		points[i] = Keyframe{Time: p.Time, Value: p.Value, Ease: p.Ease}
	}
	a.SetCurve(NewKeyframeCurve(d.BaseValue, points...))

	targets := make([]*Target, len(d.Targets))
	for i, t := range d.Targets {
		targets[i] = &Target{NodeID: t.NodeID, Property: t.Property, Mapping: t.Mapping, Relative: t.Relative}
	}
	a.SetTargets(targets...)
	return a
}

// MarshalProject serializes the timeline to YAML. Curves other than
// *KeyframeCurve are stored without points.
func MarshalProject(tl *MemoryTimeline) ([]byte, error) {
	doc := projectDoc{Items: make([]itemDoc, 0, len(tl.Items()))}
	for _, it := range tl.Items() {
		doc.Items = append(doc.Items, itemToDoc(it))
	}
	return yaml.Marshal(&doc)
}

// WriteProject writes the timeline as a YAML document to path.
func WriteProject(tl *MemoryTimeline, path string) error {
	data, err := MarshalProject(tl)
	if err != nil {
		return fmt.Errorf("reel: failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("reel: failed to write project %s: %w", path, err)
	}
	return nil
}

func itemToDoc(it *Item) itemDoc {
	d := itemDoc{
		ID:       it.ID,
		Kind:     it.Kind.String(),
		Label:    it.Label,
		Row:      it.Row,
		ZIndex:   it.ZIndex,
		Start:    it.Start,
		Duration: it.Duration,
		Source:   it.Source,
		Parent:   it.Parent,
	}
	if it.Disabled {
		d.Enabled = boolPtr(false)
	}
	if it.Hidden {
		d.Visible = boolPtr(false)
	}
	if it.TileColor != ColorWhite {
		d.TileColor = it.TileColor.Hex()
	}
	if len(it.Data) > 0 {
		d.Data = it.Data
	}
	if it.Automation != nil {
		ad := automationToDoc(it.Automation)
		d.Automation = &ad
	}
	for _, a := range it.Animations {
		d.Animations = append(d.Animations, automationToDoc(a))
	}
	return d
}

func automationToDoc(a *Automation) automationDoc {
	d := automationDoc{Start: a.Start, BaseValue: a.BaseValue, Mapping: a.Mapping()}
	if !a.Enabled {
		d.Enabled = boolPtr(false)
	}
	if kc, ok := a.Curve().(*KeyframeCurve); ok {
		for _, p := range kc.Points() {
			d.Points = append(d.Points, keyframeDoc{Time: p.Time, Value: p.Value, Ease: p.Ease})
		}
	}
	for _, t := range a.Targets() {
		d.Targets = append(d.Targets, targetDoc{NodeID: t.NodeID, Property: t.Property, Mapping: t.Mapping, Relative: t.Relative})
	}
	return d
}

func boolPtr(b bool) *bool { return &b }
