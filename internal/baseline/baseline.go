// Package baseline loads the reference dataset the classifier is fitted on
// and exposes it as an immutable distribution snapshot for drift comparison.
package baseline

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

//go:embed iris.csv
var irisCSV []byte

// FeatureNames is the serving-time feature schema in dataset column order.
// The names match the upstream dataset exports so request payloads from
// existing clients keep working unchanged.
var FeatureNames = []string{
	"sepal length (cm)",
	"sepal width (cm)",
	"petal length (cm)",
	"petal width (cm)",
}

// Baseline is the reference distribution: per-feature columns, class labels
// and a content fingerprint. Constructed once at startup, never mutated,
// shared read-only by every analysis run.
type Baseline struct {
	features    []string
	columns     map[string][]float64
	labels      []int
	classNames  []string
	fingerprint string
}

// Load parses the embedded dataset into a Baseline.
func Load() (*Baseline, error) {
	return parse(irisCSV)
}

func parse(raw []byte) (*Baseline, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse baseline dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("baseline dataset has no data rows")
	}

	header := rows[0]
	if len(header) != len(FeatureNames)+1 {
		return nil, fmt.Errorf("baseline dataset has %d columns, expected %d", len(header), len(FeatureNames)+1)
	}

	columns := make(map[string][]float64, len(FeatureNames))
	for _, name := range FeatureNames {
		columns[name] = make([]float64, 0, len(rows)-1)
	}

	classIndex := make(map[string]int)
	var classNames []string
	labels := make([]int, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) != len(FeatureNames)+1 {
			return nil, fmt.Errorf("baseline dataset row %d has %d columns", i+2, len(row))
		}

		for j, name := range FeatureNames {
			value, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("baseline dataset row %d column %q: %w", i+2, name, err)
			}
			columns[name] = append(columns[name], value)
		}

		species := row[len(FeatureNames)]
		id, ok := classIndex[species]
		if !ok {
			id = len(classNames)
			classIndex[species] = id
			classNames = append(classNames, species)
		}
		labels = append(labels, id)
	}

	sum := blake2b.Sum256(raw)

	return &Baseline{
		features:    append([]string(nil), FeatureNames...),
		columns:     columns,
		labels:      labels,
		classNames:  classNames,
		fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// Features returns the feature names in comparison order.
func (b *Baseline) Features() []string {
	return append([]string(nil), b.features...)
}

// Column returns a copy of the named feature column. Callers are free to
// sort or mutate the returned slice.
func (b *Baseline) Column(name string) []float64 {
	col, ok := b.columns[name]
	if !ok {
		return nil
	}
	return append([]float64(nil), col...)
}

// Labels returns a copy of the class label per row.
func (b *Baseline) Labels() []int {
	return append([]int(nil), b.labels...)
}

// Classes returns the class names indexed by label id.
func (b *Baseline) Classes() []string {
	return append([]string(nil), b.classNames...)
}

// ClassName resolves a label id to its name.
func (b *Baseline) ClassName(id int) (string, error) {
	if id < 0 || id >= len(b.classNames) {
		return "", fmt.Errorf("unknown class id %d", id)
	}
	return b.classNames[id], nil
}

// Samples is the number of reference rows.
func (b *Baseline) Samples() int {
	return len(b.labels)
}

// Fingerprint is the BLAKE2b-256 digest of the raw dataset, recorded in
// every report so a reader can tell which baseline it was compared against.
func (b *Baseline) Fingerprint() string {
	return b.fingerprint
}
