// Package training provides the operations that configure, train and
// export symbolic models built from the layers module.
package training

import (
	_ "embed"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/internal/operation"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the catalog.Module interface for this package.
type Module struct{}

// Manifest returns the node kinds this module backs.
func (m *Module) Manifest() (string, []byte) {
	return "training/manifest.hcl", manifest
}

var (
	losses = map[string]string{
		"binary_crossentropy":      "Binary cross-entropy loss.",
		"mean_squared_error":       "Mean of squares of errors.",
		"categorical_crossentropy": "Cross-entropy loss over one-hot labels.",
	}
	metrics = map[string]string{
		"accuracy":           "How often predictions equal labels.",
		"f1_score":           "Harmonic mean of precision and recall.",
		"mean_squared_error": "Mean squared error between labels and predictions.",
	}
)

// Register registers the training operations.
func (m *Module) Register(r *catalog.Registry) {
	r.RegisterOperation("training.compile", "Configures the model for training.", operation.NewTyped(CompileModel))
	r.RegisterOperation("training.fit", "Trains the model for a fixed number of epochs.", operation.NewTyped(FitModel))
	r.RegisterOperation("training.adam", "Adam optimizer.", operation.NewTyped(Adam))
	r.RegisterOperation("training.sgd", "Gradient descent with momentum.", operation.NewTyped(SGD))
	r.RegisterOperation("training.rmsprop", "RMSprop optimizer.", operation.NewTyped(RMSprop))
	r.RegisterOperation("training.save_model", "Writes the model description to a file.", operation.NewTyped(SaveModel))
	r.RegisterOperation("training.plot_model", "Writes a text summary of the model.", operation.NewTyped(PlotModel))
	for name, doc := range losses {
		r.RegisterOperation("training.loss."+name, doc, named("loss", name))
	}
	for name, doc := range metrics {
		r.RegisterOperation("training.metric."+name, doc, named("metric", name))
	}
}
