package naming

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"mediasort/internal/config"
)

// Source identifies where a variable's value comes from.
type Source string

const (
	SourceUserInput     Source = "user_input"
	SourceFileMetadata  Source = "file_metadata"
	SourceSystemContext Source = "system"
	SourceConfiguration Source = "configuration"
	SourceGenerated     Source = "generated"
)

// Definition declares a naming variable: its resolution source, whether it is
// required, its fallback, and the format grammar its modifiers accept.
type Definition struct {
	Name        string
	Description string
	Source      Source
	Required    bool
	Fallback    string
	HasFallback bool
	// DateFormat is the default strftime pattern for system clock variables.
	DateFormat string
	// Value carries the static value for configuration-sourced variables.
	Value   string
	Example string
}

// Registry is an immutable, run-scoped lookup of variable definitions.
// Each batch run owns its own instance.
type Registry struct {
	defs map[string]Definition
}

// Context bundles everything variable resolution may draw from for one file:
// the run's user-supplied fields, the file's metadata bag, and system context.
// User fields override file metadata; file metadata overrides system defaults.
type Context struct {
	User     map[string]string
	Metadata map[string]string
	Now      time.Time
	Sequence int
	// SequencePadding is the zero-pad width applied when a sequence token
	// carries no explicit pad modifier.
	SequencePadding int
}

// NewRegistry builds a registry from explicit definitions.
func NewRegistry(defs []Definition) (*Registry, error) {
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("variable definition with empty name")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate variable definition %q", name)
		}
		def.Name = name
		byName[name] = def
	}
	return &Registry{defs: byName}, nil
}

// DefaultRegistry declares the stock variable set, with venue values and user
// fields drawn from configuration.
func DefaultRegistry(cfg *config.Config) *Registry {
	defs := []Definition{
		{Name: "event_name", Description: "Name of the event", Source: SourceUserInput, Required: true, Example: "Final Friday March 2024"},
		{Name: "artist_names", Description: "Artist or band names", Source: SourceUserInput, Fallback: "Unknown Artist", HasFallback: true, Example: "The Local Band"},
		{Name: "date", Description: "Date in YYYY-MM-DD format", Source: SourceSystemContext, DateFormat: "%Y-%m-%d", Example: "2024-08-16"},
		{Name: "datetime", Description: "Full date and time", Source: SourceSystemContext, DateFormat: "%Y-%m-%d_%H-%M-%S", Example: "2024-08-16_20-30-45"},
		{Name: "dayofweek", Description: "Day of the week", Source: SourceSystemContext, DateFormat: "%A", Example: "Friday"},
		{Name: "date2digit", Description: "Month as 2-digit number", Source: SourceSystemContext, DateFormat: "%m", Example: "08"},
		{Name: "month_name", Description: "Full month name", Source: SourceSystemContext, DateFormat: "%B", Example: "August"},
		{Name: "time", Description: "Time in HH-MM-SS format", Source: SourceSystemContext, DateFormat: "%H-%M-%S", Example: "20-30-45"},
		{Name: "sequence", Description: "Sequential number for files", Source: SourceGenerated, Example: "001"},
		{Name: "device", Description: "Camera or device type", Source: SourceFileMetadata, Example: "canon_80d"},
		{Name: "media_type", Description: "Type of media (photo, video, raw)", Source: SourceFileMetadata, Example: "photo"},
		{Name: "resolution", Description: "Image/video resolution", Source: SourceFileMetadata, Example: "1080p"},
		{Name: "original_name", Description: "Original filename without extension", Source: SourceFileMetadata, Example: "IMG_1234"},
	}

	venue := config.Default().Venue
	var user config.User
	if cfg != nil {
		venue = cfg.Venue
		user = cfg.User
	}
	defs = append(defs,
		Definition{Name: "location", Description: "Venue location", Source: SourceConfiguration, Value: venue.Location},
		Definition{Name: "city", Description: "City name", Source: SourceConfiguration, Value: venue.City},
		Definition{Name: "venue", Description: "Venue name", Source: SourceConfiguration, Value: venue.Name},
		Definition{Name: "venue_short", Description: "Abbreviated venue name", Source: SourceConfiguration, Value: venue.ShortName},
	)
	for name := range user.Extra {
		defs = append(defs, Definition{Name: name, Description: "User-defined field", Source: SourceUserInput})
	}

	registry, err := NewRegistry(defs)
	if err != nil {
		// The stock definitions are statically unique.
		panic(err)
	}
	return registry
}

// Lookup returns the definition for a variable name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all declared variable names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns all definitions ordered by name.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.defs))
	for _, name := range r.Names() {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// Resolve produces the raw value for a variable under the given context.
// It returns ErrMissingVariable when no tier can supply a value; callers decide
// whether a fallback absorbs the miss.
func (r *Registry) Resolve(name string, ctx *Context) (string, error) {
	def, ok := r.defs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	if ctx != nil {
		if value, ok := ctx.User[name]; ok && strings.TrimSpace(value) != "" {
			return value, nil
		}
		if value, ok := ctx.Metadata[name]; ok && strings.TrimSpace(value) != "" {
			return value, nil
		}
	}
	switch def.Source {
	case SourceSystemContext:
		now := time.Now()
		if ctx != nil && !ctx.Now.IsZero() {
			now = ctx.Now
		}
		pattern := def.DateFormat
		if pattern == "" {
			pattern = "%Y-%m-%d"
		}
		return strftime.Format(pattern, now), nil
	case SourceGenerated:
		if ctx == nil || ctx.Sequence <= 0 {
			return "", fmt.Errorf("%w: %s", ErrMissingVariable, name)
		}
		padding := ctx.SequencePadding
		if padding <= 0 {
			padding = 1
		}
		return fmt.Sprintf("%0*d", padding, ctx.Sequence), nil
	case SourceConfiguration:
		if strings.TrimSpace(def.Value) != "" {
			return def.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMissingVariable, name)
}

// SequenceValue returns the raw (unpadded) sequence number for pad modifiers.
func (ctx *Context) SequenceValue() (int, bool) {
	if ctx == nil || ctx.Sequence <= 0 {
		return 0, false
	}
	return ctx.Sequence, true
}

func parseInteger(value string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
