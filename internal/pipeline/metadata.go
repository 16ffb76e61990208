package pipeline

import (
	"sort"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Field metadata columns
const (
	FieldSourceColumn = "field_source"
	FieldNameColumn   = "field_name"
	FieldTypeColumn   = "field_type"
)

// FieldMetadata describes every user column of the non-empty staged
// sources, one row per column, sorted by source then field.
func FieldMetadata(staged []stagedSource) *models.Table {
	out := models.NewTable(config.FieldMetadataName, FieldSourceColumn, FieldNameColumn, FieldTypeColumn)

	sorted := append([]stagedSource(nil), staged...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	for _, s := range sorted {
		if s.table == nil || s.table.IsEmpty() {
			continue
		}
		cols := userColumns(s.table)
		sort.Strings(cols)
		for _, c := range cols {
			out.AppendRow(models.Row{
				FieldSourceColumn: s.name,
				FieldNameColumn:   c,
				FieldTypeColumn:   string(s.table.InferFieldType(c)),
			})
		}
	}
	return out
}
