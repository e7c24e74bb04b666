// Package hclcatalog loads node kinds from HCL manifests into a
// catalog.Registry.
//
// A manifest may declare classes, named enumerations and the category tree
// of node kinds:
//
//	class "ValueNode" {
//	  extends = "ParameterNode"
//	}
//
//	enum "activation" {
//	  values = ["relu", "sigmoid", "tanh"]
//	}
//
//	category "Neural Network Layers" {
//	  subcategory "Full" {
//	    node "Dense" {
//	      class     = "LayerNode"
//	      operation = "layers.dense"
//	      input_accepts = "LayerNode"
//
//	      parameter "units" {
//	        type    = integer
//	        default = 32
//	      }
//	      parameter "activation" {
//	        type = enum(activation)
//	      }
//	    }
//	  }
//	}
//
// Parameter types are written as expressions: integer, float, string, bool,
// fileset, enum(name) or enum("a", "b"), sequence(t1, t2, ...) and
// noderef("ClassName", single|multiple).
//
// Classes and enums are resolved across every loaded source before any node
// is built, so declaration order between files does not matter.
package hclcatalog
