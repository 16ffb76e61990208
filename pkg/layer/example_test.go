package layer_test

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// Example merges two sources on a shared key, concatenating the one column
// they disagree on.
func Example() {
	ns := layer.NewNamespace()
	_ = ns.Put("crm", models.FromRows("crm", []string{"key", "city"}, []models.Row{
		{"key": "k1", "city": "X"},
	}))
	_ = ns.Put("sheet", models.FromRows("sheet", []string{"key", "city"}, []models.Row{
		{"key": "k1", "city": "Y"},
	}))

	err := layer.NewExecutor(zap.NewNop()).Run(context.Background(), ns, []layer.Layer{
		&layer.MergeLayer{
			LayerName:   "contacts",
			SourceNames: []string{"crm", "sheet"},
			MergeKeys:   []string{"key"},
			ConflictResolutions: map[string]resolve.Spec{
				"city": {Strategy: resolve.Concatenate},
			},
		},
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	contacts, _ := ns.Get("contacts")
	fmt.Println(contacts.Value(0, "city"))

	// Output:
	// X | Y
}

// ExampleUnionProcessor stacks two tables and tags each row with its source.
func ExampleUnionProcessor() {
	ns := layer.NewNamespace()
	_ = ns.Put("a", models.FromRows("a", []string{"id"}, []models.Row{{"id": int64(1)}}))
	_ = ns.Put("b", models.FromRows("b", []string{"id", "city"}, []models.Row{{"id": int64(2), "city": "Medan"}}))

	out := layer.NewUnionProcessor(zap.NewNop()).Process(&layer.UnionLayer{
		LayerName:       "all",
		SourceNames:     []string{"a", "b"},
		AddSourceColumn: true,
	}, ns)

	fmt.Println(out.Columns())
	for _, r := range out.Rows() {
		fmt.Println(r["id"], r["_source"], r["city"])
	}

	// Output:
	// [id _source city]
	// 1 a <nil>
	// 2 b Medan
}
