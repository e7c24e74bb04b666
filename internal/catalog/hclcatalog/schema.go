package hclcatalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes every top-level block a manifest may hold.
type fileRoot struct {
	Classes    []*classBlock    `hcl:"class,block"`
	Enums      []*enumBlock     `hcl:"enum,block"`
	Categories []*categoryBlock `hcl:"category,block"`
	Remain     hcl.Body         `hcl:",remain"`
}

type classBlock struct {
	Name    string `hcl:"name,label"`
	Extends string `hcl:"extends"`
}

type enumBlock struct {
	Name   string   `hcl:"name,label"`
	Values []string `hcl:"values"`
}

type categoryBlock struct {
	Name          string              `hcl:"name,label"`
	Subcategories []*subcategoryBlock `hcl:"subcategory,block"`
}

type subcategoryBlock struct {
	Name  string       `hcl:"name,label"`
	Nodes []*nodeBlock `hcl:"node,block"`
}

type nodeBlock struct {
	Label     string `hcl:"label,label"`
	Class     string `hcl:"class"`
	Operation string `hcl:"operation"`
	Doc       string `hcl:"doc,optional"`
	// Input and Output default to true.
	Input        *bool             `hcl:"input,optional"`
	InputAccepts string            `hcl:"input_accepts,optional"`
	Output       *bool             `hcl:"output,optional"`
	Parameters   []*parameterBlock `hcl:"parameter,block"`
}

type parameterBlock struct {
	Name      string         `hcl:"name,label"`
	Type      hcl.Expression `hcl:"type"`
	Role      string         `hcl:"role,optional"`
	Default   *cty.Value     `hcl:"default,optional"`
	BackField string         `hcl:"back_field,optional"`
}
