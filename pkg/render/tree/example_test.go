package tree_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/shapegrid/pkg/render/tree"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

func ExampleToDOT() {
	page := shape.NewGroup("page", 0, 0, 600, 800)
	_ = page.AddChild(shape.New("title", 20, 20, 560, 60))
	_ = page.AddChild(shape.NewLine("rule", 20, 90, 560, 1))

	dot := tree.ToDOT(page, tree.Options{})

	fmt.Println("nodes:", strings.Count(dot, "label="))
	fmt.Println("edges:", strings.Count(dot, "->"))
	// Output:
	// nodes: 3
	// edges: 2
}
