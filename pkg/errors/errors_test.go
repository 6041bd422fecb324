package errors

import "testing"

func TestErrors_ErrorMethod(t *testing.T) {
	errs := []error{
		&TableAlreadyExistsError{Name: "t1"},
		&TableNotFoundError{Name: "t1"},
		&TwoPrimarykeysError{Total: 2},
		&PrimarykeyNotDefinedError{TableName: "t1"},
		&DuplicateKeyError{Key: "k1"},
		&IndexNotFoundError{Name: "i1"},
		&InvalidKeyTypeError{Name: "i1", TypeName: "int"},
		&ColumnNotFoundError{Table: "t1", Column: "c1"},
		&TypeMismatchError{Column: "c1", Expected: "Integer", Got: "abc"},
		&DuplicateUniqueValueError{Column: "c1", Value: "x"},
		&NotNullViolationError{Column: "c1"},
		&SyntaxError{Statement: "SELEKT"},
	}

	for _, e := range errs {
		if e.Error() == "" {
			t.Errorf("Error() returned empty string for %T", e)
		}
	}
}
