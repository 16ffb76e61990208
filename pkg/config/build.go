package config

import (
	"github.com/ajitpratap0/strata/pkg/dedup"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/normalize"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// Spec converts the declaration into a resolution spec, binding a custom
// resolver from reg when the strategy is custom.
func (rc ResolutionConfig) Spec(reg *resolve.Registry) (resolve.Spec, error) {
	name := rc.Strategy
	if name == "" {
		name = resolve.First.String()
	}
	strategy, err := resolve.ParseStrategy(name)
	if err != nil {
		return resolve.Spec{}, err
	}
	spec := resolve.Spec{
		Strategy:        strategy,
		PreferredSource: rc.PreferredSource,
		Separator:       rc.Separator,
		CustomName:      rc.Resolver,
	}
	spec, err = spec.Bind(reg)
	if err != nil {
		return resolve.Spec{}, err
	}
	return spec, spec.Validate()
}

// Build converts the declaration into an engine layer.
func (lc LayerConfig) Build(reg *resolve.Registry) (layer.Layer, error) {
	transforms, err := buildTransformations(lc.Transformations)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "layer "+lc.Name)
	}

	switch lc.Type {
	case string(layer.KindUnion):
		return &layer.UnionLayer{
			LayerName:       lc.Name,
			SourceNames:     lc.Sources,
			AddSourceColumn: lc.AddSourceColumn == nil || *lc.AddSourceColumn,
			Transforms:      transforms,
		}, nil

	case string(layer.KindMerge):
		joinType, err := layer.ParseJoinType(lc.MergeType)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "layer "+lc.Name)
		}
		ml := &layer.MergeLayer{
			LayerName:           lc.Name,
			SourceNames:         lc.Sources,
			MergeKeys:           lc.MergeKeys,
			MergeType:           joinType,
			MergeableColumns:    lc.ColumnsToMerge,
			ExclusiveColumns:    lc.KeepSeparate,
			ConflictResolutions: make(map[string]resolve.Spec, len(lc.ConflictResolution)),
			OnKeyMismatch:       layer.MismatchPolicy(lc.OnKeyMismatch),
			Transforms:          transforms,
		}
		if lc.DefaultResolution != nil {
			spec, err := lc.DefaultResolution.Spec(reg)
			if err != nil {
				return nil, errors.Wrap(err, errors.TypeOf(err), "layer "+lc.Name+" default resolution")
			}
			ml.DefaultResolution = spec
		}
		for col, rc := range lc.ConflictResolution {
			spec, err := rc.Spec(reg)
			if err != nil {
				return nil, errors.Wrap(err, errors.TypeOf(err), "layer "+lc.Name+" column "+col)
			}
			ml.ConflictResolutions[col] = spec
		}
		return ml, nil

	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "layer %s: unknown type %q (want union or merge)", lc.Name, lc.Type)
	}
}

// Build converts the declaration into a transformation.
func (tc TransformationConfig) Build() (layer.Transformation, error) {
	switch tc.Type {
	case "dedupe", "deduplicate":
		opts := dedup.Options{
			Mode:         dedup.Mode(tc.Mode),
			Keep:         dedup.Keep(tc.Keep),
			Annotate:     tc.Annotate,
			Keys:         dedup.KeyColumns{Email: tc.EmailColumn, Phone: tc.PhoneColumn},
			MergeColumns: tc.MergeColumns,
		}
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return layer.Dedupe{Options: opts}, nil
	case "normalize":
		fields := make(map[string]normalize.Kind, len(tc.Fields))
		for col, kind := range tc.Fields {
			k, err := parseNormalizer(kind)
			if err != nil {
				return nil, err
			}
			fields[col] = k
		}
		return layer.Normalize{Fields: fields}, nil
	case "drop_columns":
		return layer.DropColumns{Columns: tc.Columns}, nil
	case "rename_columns":
		return layer.RenameColumns{Mapping: tc.Mapping}, nil
	case "select_columns":
		return layer.SelectColumns{Columns: tc.Columns}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown transformation type %q", tc.Type)
	}
}

// BuildTransformations converts a list of declarations, stopping at the
// first invalid one.
func BuildTransformations(list []TransformationConfig) ([]layer.Transformation, error) {
	return buildTransformations(list)
}

func buildTransformations(list []TransformationConfig) ([]layer.Transformation, error) {
	out := make([]layer.Transformation, 0, len(list))
	for _, tc := range list {
		t, err := tc.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseNormalizer(kind string) (normalize.Kind, error) {
	k := normalize.Kind(kind)
	if _, err := normalize.Lookup(k); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeConfig, "invalid normalizer")
	}
	return k, nil
}
