package schema

import "testing"

func usersColumns() []Column {
	return []Column{
		{Name: "id", Type: Integer, IsPrimaryKey: true},
		{Name: "name", Type: Varchar, MaxLen: 50},
		{Name: "active", Type: Boolean},
	}
}

func TestNewRejectsMultiplePrimaryKeys(t *testing.T) {
	cols := usersColumns()
	cols[1].IsPrimaryKey = true
	if _, err := New("users", cols); err == nil {
		t.Fatal("expected error for two primary keys")
	}
}

func TestNewRejectsNoPrimaryKey(t *testing.T) {
	cols := usersColumns()
	cols[0].IsPrimaryKey = false
	if _, err := New("users", cols); err == nil {
		t.Fatal("expected error for missing primary key")
	}
}

func TestNewRejectsDuplicateColumn(t *testing.T) {
	cols := append(usersColumns(), Column{Name: "id", Type: Integer})
	if _, err := New("users", cols); err == nil {
		t.Fatal("expected error for duplicate column")
	}
}

func TestOffsetsFollowSchemaOrder(t *testing.T) {
	s, err := New("users", usersColumns())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	offID, _ := s.Offset("id")
	offName, _ := s.Offset("name")
	offActive, _ := s.Offset("active")

	if offID != 0 {
		t.Fatalf("expected id at offset 0, got %d", offID)
	}
	if offName != 8 {
		t.Fatalf("expected name at offset 8 (after 8-byte integer), got %d", offName)
	}
	if offActive != 8+4+50 {
		t.Fatalf("expected active after name's 4+50 bytes, got %d", offActive)
	}
}

func TestValidateCoercesVarcharQuotes(t *testing.T) {
	col := Column{Name: "name", Type: Varchar, MaxLen: 5}
	if err := col.Validate("'Alice'"); err != nil {
		t.Fatalf("expected 'Alice' (5 chars) within MaxLen 5 to validate, got %v", err)
	}
}

func TestValidateRejectsOversizeVarchar(t *testing.T) {
	col := Column{Name: "name", Type: Varchar, MaxLen: 3}
	if err := col.Validate("'Alice'"); err == nil {
		t.Fatal("expected oversize varchar to fail validation")
	}
}
