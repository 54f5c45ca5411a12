package lesson

import "fmt"

// Checklist item names.
const (
	ItemMaterials = "materials"
	ItemQuiz      = "quiz"
	ItemGame      = "game"
)

type ChecklistItem struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Checklist holds the named sub-tasks gating lesson completion.
type Checklist struct {
	items    []ChecklistItem
	onChange func(complete bool)
}

func NewChecklist(names ...string) *Checklist {
	c := &Checklist{items: make([]ChecklistItem, 0, len(names))}
	for _, n := range names {
		c.items = append(c.items, ChecklistItem{Name: n})
	}
	return c
}

// OnChange registers a hook called with the aggregate after every change.
func (c *Checklist) OnChange(f func(complete bool)) { c.onChange = f }

// Set updates one item. Unknown names are a validation error.
func (c *Checklist) Set(name string, done bool) error {
	for i := range c.items {
		if c.items[i].Name != name {
			continue
		}
		if c.items[i].Done == done {
			return nil
		}
		c.items[i].Done = done
		if c.onChange != nil {
			c.onChange(c.IsComplete())
		}
		return nil
	}
	return &ValidationError{Field: "checklist", Msg: fmt.Sprintf("unknown item %q", name)}
}

func (c *Checklist) Has(name string) bool {
	for _, it := range c.items {
		if it.Name == name {
			return true
		}
	}
	return false
}

func (c *Checklist) Done(name string) bool {
	for _, it := range c.items {
		if it.Name == name {
			return it.Done
		}
	}
	return false
}

// IsComplete is true when every item is done.
func (c *Checklist) IsComplete() bool {
	for _, it := range c.items {
		if !it.Done {
			return false
		}
	}
	return true
}

// Missing lists the items that are not done yet.
func (c *Checklist) Missing() []string {
	var out []string
	for _, it := range c.items {
		if !it.Done {
			out = append(out, it.Name)
		}
	}
	return out
}

func (c *Checklist) Items() []ChecklistItem {
	out := make([]ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}
