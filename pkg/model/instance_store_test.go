package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallInstanceText = `P 2
D 2
T 4
S 2
H 10
hd
3
4
apd
5 1
2 6
rpt
2 2 2 2
2 2 2 2
`

func smallInstance() Instance {
	return Instance{
		Name: "small",
		P:    2, D: 2, T: 4, S: 2, H: 10,
		Hd:  []int{3, 4},
		Apd: [][]int{{5, 1}, {2, 6}},
		Rpt: [][]int{{2, 2, 2, 2}, {2, 2, 2, 2}},
	}
}

func TestParseInstance(t *testing.T) {
	t.Run("Well-formed", func(t *testing.T) {
		instance, err := ParseInstance("small", strings.NewReader(smallInstanceText))

		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(smallInstance(), instance))
	})

	t.Run("Header labels are free-form", func(t *testing.T) {
		text := strings.Replace(smallInstanceText, "P 2", "professionals: 2", 1)

		instance, err := ParseInstance("small", strings.NewReader(text))

		require.NoError(t, err)
		assert.Equal(t, 2, instance.P)
	})

	t.Run("Round trip", func(t *testing.T) {
		//** Arrange
		original := Instance{
			Name: "P2D3S1",
			P:    2, D: 3, T: 2, S: 1, H: 7,
			Hd:  []int{1, 0, 2},
			Apd: [][]int{{-3, 0, 8}, {4, -120, 1}},
			Rpt: [][]int{{0, 1}, {1, 1}},
		}

		//** Act
		var builder strings.Builder
		require.NoError(t, SerializeInstance(&builder, original))
		parsed, err := ParseInstance(original.Name, strings.NewReader(builder.String()))

		//** Assert
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(original, parsed))
	})

	malformed := map[string]string{
		"Missing header":          "P 2\nD 2\nT 4\nS 2\n",
		"Non-numeric header":      strings.Replace(smallInstanceText, "S 2", "S two", 1),
		"Header without value":    strings.Replace(smallInstanceText, "H 10", "H", 1),
		"Zero dimension":          strings.Replace(smallInstanceText, "T 4", "T 0", 1),
		"Short apd row":           strings.Replace(smallInstanceText, "5 1\n", "5\n", 1),
		"Long rpt row":            strings.Replace(smallInstanceText, "2 2 2 2\n", "2 2 2 2 2\n", 1),
		"Non-integer entry":       strings.Replace(smallInstanceText, "2 6", "2 6.5", 1),
		"Negative hours":          strings.Replace(smallInstanceText, "hd\n3", "hd\n-3", 1),
		"Negative repetition cap": strings.Replace(smallInstanceText, "rpt\n2 2", "rpt\n-1 2", 1),
		"Truncated matrix":        strings.TrimSuffix(smallInstanceText, "2 2 2 2\n"),
		"Empty file":              "",
	}
	for name, text := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInstance("broken", strings.NewReader(text))

			var malformedErr *MalformedInstanceError
			require.True(t, errors.As(err, &malformedErr), "expected a MalformedInstanceError, got %v", err)
			assert.Equal(t, "broken", malformedErr.File)
		})
	}

	t.Run("Negative affinity is allowed", func(t *testing.T) {
		text := strings.Replace(smallInstanceText, "5 1", "-5 1", 1)

		instance, err := ParseInstance("small", strings.NewReader(text))

		require.NoError(t, err)
		assert.Equal(t, -5, instance.Apd[0][0])
	})

	t.Run("Line number of the defect", func(t *testing.T) {
		text := strings.Replace(smallInstanceText, "2 6", "2 x", 1)

		_, err := ParseInstance("broken", strings.NewReader(text))

		var malformedErr *MalformedInstanceError
		require.ErrorAs(t, err, &malformedErr)
		assert.Equal(t, 11, malformedErr.Line)
	})
}

func TestSortInstanceNames(t *testing.T) {
	names := []string{"P70D70S1.pap", "custom.pap", "P50D50S3.pap", "P50D50S1.pap", "P10D20S3b.pap", "P10D20S3a.pap"}

	SortInstanceNames(names)

	assert.Equal(t, []string{"P10D20S3a.pap", "P10D20S3b.pap", "P50D50S1.pap", "P50D50S3.pap", "P70D70S1.pap", "custom.pap"}, names)
}

func TestInstanceStore(t *testing.T) {
	folder := t.TempDir()
	for _, name := range []string{"P70D70S1", "P50D50S3", "P50D50S1"} {
		instance := smallInstance()
		instance.Name = name
		require.NoError(t, SaveInstance(filepath.Join(folder, name+InstanceExtension), instance))
	}
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("not an instance"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(folder, "P1D1S1.pap"), 0o755))

	store := NewInstanceStore(folder)

	t.Run("Deterministic order", func(t *testing.T) {
		names, err := store.Names()

		require.NoError(t, err)
		assert.Equal(t, []string{"P50D50S1.pap", "P50D50S3.pap", "P70D70S1.pap"}, names)
	})

	t.Run("List can be iterated again", func(t *testing.T) {
		collect := func() []string {
			names := make([]string, 0)
			for name, err := range store.List() {
				require.NoError(t, err)
				names = append(names, name)
			}
			return names
		}

		first := collect()
		second := collect()

		assert.Equal(t, first, second)
		assert.Len(t, first, 3)
	})

	t.Run("Early break", func(t *testing.T) {
		count := 0
		for range store.List() {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("Load by identifier", func(t *testing.T) {
		instance, err := store.Load("P50D50S3.pap")

		require.NoError(t, err)
		assert.Equal(t, "P50D50S3", instance.Name)
		assert.Equal(t, smallInstance().Apd, instance.Apd)
	})

	t.Run("Missing folder", func(t *testing.T) {
		for _, err := range NewInstanceStore(filepath.Join(folder, "missing")).List() {
			assert.Error(t, err)
		}
	})
}

func TestInstanceCheck(t *testing.T) {
	instance := smallInstance()
	instance.Rpt = [][]int{{2, 2, 2, 2}, {2, 2}}

	err := instance.Check()

	var mismatch *DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "rpt", mismatch.Field)
	assert.Equal(t, 1, mismatch.Row)
	assert.Equal(t, 4, mismatch.Expected)
	assert.Equal(t, 2, mismatch.Actual)
}

func TestObjectiveUpperBound(t *testing.T) {
	assert.Equal(t, 5+6, smallInstance().ObjectiveUpperBound())

	instance := smallInstance()
	instance.Apd = [][]int{{-300, 1}, {-200, 6}}
	assert.Equal(t, -CoverageWeight+6, instance.ObjectiveUpperBound())
}
