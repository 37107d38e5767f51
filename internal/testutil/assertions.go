package testutil

import (
	"reflect"
	"testing"

	"github.com/leengari/mdtable/internal/domain/data"
	"github.com/leengari/mdtable/internal/domain/schema"
)

// AssertRowCount checks if the result has the expected number of rows
func AssertRowCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, actual)
	}
}

// AssertKeys checks the index keys of a table, in order
func AssertKeys(t *testing.T, table *schema.Table, expected []string, context string) {
	t.Helper()
	if got := table.Keys(); !reflect.DeepEqual(got, expected) {
		t.Errorf("%s: expected keys %v, got %v", context, expected, got)
	}
}

// AssertColumns checks the data columns of a table, in order
func AssertColumns(t *testing.T, table *schema.Table, expected []string, context string) {
	t.Helper()
	if got := table.Columns(); !reflect.DeepEqual(got, expected) {
		t.Errorf("%s: expected columns %v, got %v", context, expected, got)
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}

// AssertNullValue checks if a cell is Null
func AssertNullValue(t *testing.T, value data.Value, context string) {
	t.Helper()
	if !value.IsNull() {
		t.Errorf("%s: expected NULL value, got: %v", context, value)
	}
}
