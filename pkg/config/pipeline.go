package config

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// FieldMetadataName is the namespace entry describing staged columns
const FieldMetadataName = "_field_metadata"

// Pipeline is the complete declarative description of a run
type Pipeline struct {
	Version string `yaml:"version" json:"version"`
	Name    string `yaml:"name" json:"name"`
	// ColumnMapping renames columns of every source after canonicalisation
	ColumnMapping map[string]string `yaml:"column_mapping" json:"column_mapping"`
	Sources       []SourceConfig    `yaml:"sources" json:"sources"`
	Layers        []LayerConfig     `yaml:"layers" json:"layers"`
	Outputs       []OutputConfig    `yaml:"outputs" json:"outputs"`
	Settings      Settings          `yaml:"settings" json:"settings"`
}

// SourceConfig declares one staged source
type SourceConfig struct {
	Name      string          `yaml:"name" json:"name"`
	Connector ConnectorConfig `yaml:"connector" json:"connector"`
	// ColumnMapping applies after the global mapping
	ColumnMapping map[string]string `yaml:"column_mapping" json:"column_mapping"`
	IncludeFields []string          `yaml:"include_fields" json:"include_fields"`
	ExcludeFields []string          `yaml:"exclude_fields" json:"exclude_fields"`
	// Normalizers maps a column to a normalizer kind; nil uses the standard
	// phone and email normalizers
	Normalizers       map[string]string `yaml:"normalizers" json:"normalizers"`
	AddSourceMetadata *bool             `yaml:"add_source_metadata" json:"add_source_metadata"`
}

// TagsSource reports whether staged rows get a _source column.
func (s SourceConfig) TagsSource() bool {
	return s.AddSourceMetadata == nil || *s.AddSourceMetadata
}

// ResolutionConfig declares a conflict resolution
type ResolutionConfig struct {
	Strategy        string `yaml:"strategy" json:"strategy"`
	PreferredSource string `yaml:"preferred_source" json:"preferred_source"`
	Separator       string `yaml:"separator" json:"separator"`
	// Resolver names a registered custom resolver
	Resolver string `yaml:"resolver" json:"resolver"`
}

// TransformationConfig declares one transformation. Type selects the variant;
// only the fields of that variant are read.
type TransformationConfig struct {
	Type string `yaml:"type" json:"type"`

	// dedupe
	Mode         string   `yaml:"mode" json:"mode"`
	Keep         string   `yaml:"keep" json:"keep"`
	Annotate     bool     `yaml:"annotate" json:"annotate"`
	EmailColumn  string   `yaml:"email_column" json:"email_column"`
	PhoneColumn  string   `yaml:"phone_column" json:"phone_column"`
	MergeColumns []string `yaml:"merge_columns" json:"merge_columns"`

	// normalize
	Fields map[string]string `yaml:"fields" json:"fields"`

	// drop_columns, select_columns
	Columns []string `yaml:"columns" json:"columns"`

	// rename_columns
	Mapping map[string]string `yaml:"mapping" json:"mapping"`
}

// LayerConfig declares a union or merge layer
type LayerConfig struct {
	Name    string   `yaml:"name" json:"name"`
	Type    string   `yaml:"type" json:"type"`
	Sources []string `yaml:"sources" json:"sources"`

	// union
	AddSourceColumn *bool `yaml:"add_source_column" json:"add_source_column"`

	// merge
	MergeKeys          []string                    `yaml:"merge_keys" json:"merge_keys"`
	MergeType          string                      `yaml:"merge_type" json:"merge_type"`
	ColumnsToMerge     []string                    `yaml:"columns_to_merge" json:"columns_to_merge"`
	KeepSeparate       []string                    `yaml:"columns_to_keep_separate" json:"columns_to_keep_separate"`
	ConflictResolution map[string]ResolutionConfig `yaml:"conflict_resolution" json:"conflict_resolution"`
	DefaultResolution  *ResolutionConfig           `yaml:"default_resolution" json:"default_resolution"`
	OnKeyMismatch      string                      `yaml:"on_key_mismatch" json:"on_key_mismatch"`

	Transformations []TransformationConfig `yaml:"transformations" json:"transformations"`
}

// OutputConfig declares a table handed to a destination
type OutputConfig struct {
	Name string `yaml:"name" json:"name"`
	// Layer names the layer or staged source to write
	Layer           string                 `yaml:"layer" json:"layer"`
	Destination     ConnectorConfig        `yaml:"destination" json:"destination"`
	Transformations []TransformationConfig `yaml:"transformations" json:"transformations"`
	IncludeColumns  []string               `yaml:"include_columns" json:"include_columns"`
	ColumnOrder     []string               `yaml:"column_order" json:"column_order"`
	// KeepInternal keeps _-prefixed columns in the output
	KeepInternal bool `yaml:"keep_internal" json:"keep_internal"`
}

// Settings holds run-wide switches
type Settings struct {
	// FailOnSourceError aborts the run when a source cannot be loaded;
	// otherwise the source is staged empty
	FailOnSourceError bool `yaml:"fail_on_source_error" json:"fail_on_source_error"`
	// FieldMetadata places _field_metadata in the namespace
	FieldMetadata *bool `yaml:"field_metadata" json:"field_metadata"`
	// CanonicalizeColumns lowercases and snake-cases staged column names
	CanonicalizeColumns *bool `yaml:"canonicalize_columns" json:"canonicalize_columns"`
	LogLevel            string `yaml:"log_level" json:"log_level"`
	Tracing             bool   `yaml:"tracing" json:"tracing"`
	// MetricsAddr serves Prometheus metrics while the run lasts
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// EmitsFieldMetadata reports whether _field_metadata is produced.
func (s Settings) EmitsFieldMetadata() bool {
	return s.FieldMetadata == nil || *s.FieldMetadata
}

// CanonicalizesColumns reports whether staged column names are canonicalised.
func (s Settings) CanonicalizesColumns() bool {
	return s.CanonicalizeColumns == nil || *s.CanonicalizeColumns
}

// SourceNames lists declared source names in order.
func (p *Pipeline) SourceNames() []string {
	names := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		names = append(names, s.Name)
	}
	return names
}

// BuildLayers converts layer declarations into engine layers, binding custom
// resolvers from reg (the default registry when nil).
func (p *Pipeline) BuildLayers(reg *resolve.Registry) ([]layer.Layer, error) {
	out := make([]layer.Layer, 0, len(p.Layers))
	for _, lc := range p.Layers {
		l, err := lc.Build(reg)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Validate checks the whole pipeline before any data is touched. Unknown
// strategies are reported as unknown_strategy errors; every other problem is
// collected into a single config error.
func (p *Pipeline) Validate(reg *resolve.Registry) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(p.Sources) == 0 {
		add("at least one source is required")
	}
	seen := map[string]bool{FieldMetadataName: true}
	for i, s := range p.Sources {
		switch {
		case s.Name == "":
			add("source #%d has no name", i)
		case seen[s.Name]:
			add("duplicate source name %s", s.Name)
		}
		seen[s.Name] = true
		if err := s.Connector.Validate(); err != nil {
			add("source %s: %v", s.Name, err)
		}
		for col, kind := range s.Normalizers {
			if _, err := parseNormalizer(kind); err != nil {
				add("source %s column %s: %v", s.Name, col, err)
			}
		}
	}

	available := append([]string{FieldMetadataName}, p.SourceNames()...)
	layers, err := p.BuildLayers(reg)
	switch {
	case errors.IsType(err, errors.ErrorTypeUnknownStrategy):
		return err
	case err != nil:
		add("%v", err)
	default:
		if err := layer.Validate(layers, available); err != nil {
			if errors.IsType(err, errors.ErrorTypeUnknownStrategy) {
				return err
			}
			var e *errors.Error
			if errors.As(err, &e) {
				if list, ok := e.Details["problems"].([]string); ok {
					problems = append(problems, list...)
				} else {
					add("%v", err)
				}
			}
		}
	}

	materialised := make(map[string]bool, len(available)+len(p.Layers))
	for _, n := range available {
		materialised[n] = true
	}
	for _, l := range p.Layers {
		materialised[l.Name] = true
	}
	for i, o := range p.Outputs {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		if !materialised[o.Layer] {
			add("output %s reads %q, which is neither a source nor a layer", name, o.Layer)
		}
		if err := o.Destination.Validate(); err != nil {
			add("output %s: %v", name, err)
		}
		for _, tc := range o.Transformations {
			if _, err := tc.Build(); err != nil {
				add("output %s: %v", name, err)
			}
		}
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrorTypeConfig, "invalid pipeline: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
