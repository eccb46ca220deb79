package learning

import (
	"github.com/pkg/errors"
)

// LibraryGrids are the parameter grids each model family is expanded over when building a library.
var LibraryGrids = map[ModelType]Grids{
	DTree: {{
		"criterion":         {"gini", "entropy"},
		"max_features":      {"all", "sqrt", "log2"},
		"max_depth":         {0, 1, 2, 5, 10},
		"min_samples_split": {2, 5, 10, 20},
	}},
	Forest: {{
		"n_estimators": {10, 20, 50},
		"criterion":    {"gini", "entropy"},
		"max_features": {"sqrt", "log2"},
		"max_depth":    {0, 5},
	}},
	Extra: {{
		"n_estimators": {10, 20, 50},
		"criterion":    {"gini", "entropy"},
		"max_features": {"sqrt", "log2"},
		"max_depth":    {0, 5},
	}},
	GBC: {{
		"n_estimators":  {10, 50, 100},
		"learning_rate": {0.1, 0.5},
		"max_depth":     {1, 2, 3},
		"subsample":     {0.5, 1.0},
	}},
	SGD: {{
		"loss":    {"hinge", "log", "modified_huber"},
		"penalty": {"l2", "l1", "elasticnet"},
		"alpha":   {1e-5, 1e-4, 1e-3, 1e-2},
	}},
	SVC: {
		{
			"kernel": {"linear"},
			"C":      {0.01, 0.1, 1.0, 10.0, 100.0},
		},
		{
			"kernel": {"rbf"},
			"C":      {0.01, 0.1, 1.0, 10.0, 100.0},
			"gamma":  {0.01, 0.1, 1.0},
		},
		{
			"kernel": {"poly"},
			"C":      {0.01, 0.1, 1.0, 10.0, 100.0},
			"degree": {2, 3},
		},
	},
	KMP: {{
		"n_clusters": {4, 8, 16, 32},
		"C":          {0.1, 1.0, 10.0},
	}},
}

// BuildModelLibrary expands the grids of the requested model types into unfitted candidates. Every candidate shares
// the same seed. Requesting a type twice adds its grid twice.
func BuildModelLibrary(types []ModelType, seed int64) ([]Candidate, error) {
	var library []Candidate
	for _, t := range types {
		grids, ok := LibraryGrids[t]
		if !ok {
			return nil, errors.Errorf("no parameter grid for model type %q", string(t))
		}
		for _, p := range grids.Iter() {
			library = append(library, Candidate{
				Type:   t,
				Params: p,
				Seed:   seed,
			})
		}
	}
	if len(library) == 0 {
		return nil, errors.New("model library is empty")
	}
	return library, nil
}
