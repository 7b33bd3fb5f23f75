package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := SourceUnavailable("overdose.csv", fs.ErrNotExist)
	assert.Equal(t, "[SOURCE_UNAVAILABLE] cannot read source overdose.csv: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "overdose.csv", err.Context["source"])
}

func TestSchemaMismatch_NamesColumns(t *testing.T) {
	err := SchemaMismatch("providers.csv", []string{"STATE"})
	assert.Contains(t, err.Error(), "STATE")
	assert.Contains(t, err.Error(), "providers.csv")
}

func TestIsType_Wrapped(t *testing.T) {
	inner := SchemaMismatch("population.csv", []string{"NAME"})
	wrapped := fmt.Errorf("load population: %w", inner)

	assert.True(t, IsType(wrapped, TypeSchemaMismatch))
	assert.False(t, IsType(wrapped, TypeSourceUnavailable))
	assert.False(t, IsType(fmt.Errorf("plain"), TypeSchemaMismatch))
}

func TestConstructors_Type(t *testing.T) {
	tests := []struct {
		err *Error
		typ Type
	}{
		{SourceUnavailable("x", nil), TypeSourceUnavailable},
		{SchemaMismatch("x", nil), TypeSchemaMismatch},
		{UnresolvedJoinKey("code", "YC"), TypeUnresolvedJoinKey},
		{MissingMeasurement("Data Value"), TypeMissingMeasurement},
		{Config("bad", nil), TypeConfig},
		{Input("bad"), TypeInput},
		{Output("bad", nil), TypeOutput},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.True(t, IsType(tt.err, tt.typ))
		})
	}
}

func TestOutput_WrapsCause(t *testing.T) {
	err := Output("cannot write report", fs.ErrPermission)
	assert.Equal(t, "[OUTPUT_ERROR] cannot write report: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)
}
