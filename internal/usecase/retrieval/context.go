package retrieval

import "errors"

// Mode is the deployment layout of the collections.
type Mode string

// Deployment modes.
const (
	ModeCombined Mode = "combined"
	ModeSplit    Mode = "split"
)

// Context holds the collections chosen at startup. It is immutable.
type Context struct {
	mode     Mode
	combined Collection
	business Collection
	event    Collection
}

// NewCombined creates a context over one collection holding both record types.
func NewCombined(c Collection) (*Context, error) {
	if c == nil {
		return nil, errors.New("combined collection is required")
	}
	return &Context{mode: ModeCombined, combined: c}, nil
}

// NewSplit creates a context over separate business and event collections.
// Either may be nil; an absent collection contributes no matches.
func NewSplit(business, event Collection) (*Context, error) {
	if business == nil && event == nil {
		return nil, errors.New("split mode requires at least one collection")
	}
	return &Context{mode: ModeSplit, business: business, event: event}, nil
}

// Mode returns the deployment mode.
func (c *Context) Mode() Mode { return c.mode }

// Collections returns the configured collections.
func (c *Context) Collections() []Collection {
	var out []Collection
	for _, col := range []Collection{c.combined, c.business, c.event} {
		if col != nil {
			out = append(out, col)
		}
	}
	return out
}
