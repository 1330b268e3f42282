package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/predict"
)

// forestFile is the on-disk layout of a tree ensemble: one entry per tree,
// each tree stored as parallel node arrays. A node is a leaf when its left
// child is -1; otherwise samples with x[feature] <= threshold go left.
type forestFile struct {
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Classes      []int    `json:"classes"`
	Trees        []tree   `json:"trees"`
}

type tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest is a random-forest style classifier: each tree yields class
// probabilities from its leaf, and the averaged probabilities pick the label.
// It is immutable after loading and safe for concurrent use.
type Forest struct {
	nFeatures int
	classes   []predict.Label
	trees     []tree
	path      string
}

// LoadForest reads and validates a forest artifact.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ff forestFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	f, err := newForest(ff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.path = path
	return f, nil
}

func newForest(ff forestFile) (*Forest, error) {
	if ff.NFeatures != features.Width {
		return nil, fmt.Errorf("%w: model expects %d features, encoder produces %d",
			features.ErrSchemaMismatch, ff.NFeatures, features.Width)
	}
	if len(ff.FeatureNames) > 0 {
		if err := features.CheckSchema(ff.FeatureNames); err != nil {
			return nil, err
		}
	}
	if len(ff.Classes) != 2 {
		return nil, fmt.Errorf("%w: want 2 classes, got %d", ErrMalformed, len(ff.Classes))
	}
	classes := make([]predict.Label, len(ff.Classes))
	for i, c := range ff.Classes {
		classes[i] = predict.Label(c)
		if !classes[i].Valid() {
			return nil, fmt.Errorf("%w: class %d is not 0 or 1", ErrMalformed, c)
		}
	}
	if classes[0] == classes[1] {
		return nil, fmt.Errorf("%w: duplicate class %d", ErrMalformed, ff.Classes[0])
	}
	if len(ff.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrMalformed)
	}
	for i, t := range ff.Trees {
		if err := t.validate(ff.NFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrMalformed, i, err)
		}
	}
	return &Forest{nFeatures: ff.NFeatures, classes: classes, trees: ff.Trees}, nil
}

func (t tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d: %d class values, want %d", i, len(t.Value[i]), nClasses)
		}
		if l == -1 {
			var total float64
			for _, x := range t.Value[i] {
				if x < 0 {
					return fmt.Errorf("node %d: negative class value", i)
				}
				total += x
			}
			if total == 0 {
				return fmt.Errorf("node %d: leaf without samples", i)
			}
			continue
		}
		// Children must point forward so traversal always terminates.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d: child index out of range", i)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, f)
		}
	}
	return nil
}

// Predict implements predict.Classifier.
func (f *Forest) Predict(ctx context.Context, v features.Vector) (predict.Label, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	proba := f.Proba(v)
	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return f.classes[best], nil
}

// Proba returns the averaged class probabilities in class order.
func (f *Forest) Proba(v features.Vector) []float64 {
	out := make([]float64, len(f.classes))
	for _, t := range f.trees {
		leaf := t.leaf(v)
		var total float64
		for _, x := range t.Value[leaf] {
			total += x
		}
		for c, x := range t.Value[leaf] {
			out[c] += x / total
		}
	}
	for c := range out {
		out[c] /= float64(len(f.trees))
	}
	return out
}

func (t tree) leaf(v features.Vector) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if v[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

// Info implements predict.Classifier.
func (f *Forest) Info() predict.ModelInfo {
	return predict.ModelInfo{
		Format:   FormatForest,
		Path:     f.path,
		Features: f.nFeatures,
		Detail:   fmt.Sprintf("%d trees", len(f.trees)),
	}
}
