package model

import "github.com/limaJavier/pap/pkg/milp"

// indexer interface is designed to give a unique index to a combination of a variable family's indices and vice versa
type indexer interface {
	// Returns a unique index to a combination of indices
	Index(indices ...int) int
	// Returns the combination of indices from a unique index
	Attributes(index int) []int
	// Returns the number of combinations
	Size() int
}

func newIndexer(dimensions ...int) indexer {
	return &indexerImplementation{dimensions: dimensions}
}

type indexerImplementation struct {
	dimensions []int
}

// Row-major: the last index varies the fastest
func (indexer *indexerImplementation) Index(indices ...int) int {
	index := 0
	for i, dimension := range indexer.dimensions {
		index = index*dimension + indices[i]
	}
	return index
}

func (indexer *indexerImplementation) Attributes(index int) []int {
	attributes := make([]int, len(indexer.dimensions))
	for i := len(indexer.dimensions) - 1; i >= 0; i-- {
		attributes[i] = index % indexer.dimensions[i]
		index = index / indexer.dimensions[i]
	}
	return attributes
}

func (indexer *indexerImplementation) Size() int {
	size := 1
	for _, dimension := range indexer.dimensions {
		size *= dimension
	}
	return size
}

// variableTable declares a whole family of variables and gives constant-time access to them by indices
type variableTable struct {
	indexer   indexer
	variables []milp.Variable
}

func declareFamily(model *milp.Model, family string, dimensions ...int) variableTable {
	table := variableTable{indexer: newIndexer(dimensions...)}
	table.variables = make([]milp.Variable, table.indexer.Size())
	for index := range table.variables {
		table.variables[index] = model.AddVariable(family, table.indexer.Attributes(index)...)
	}
	return table
}

func (table variableTable) at(indices ...int) milp.Variable {
	return table.variables[table.indexer.Index(indices...)]
}
