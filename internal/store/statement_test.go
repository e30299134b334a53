package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/donbarbero/booking-core/internal/infrastructure/database"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		dialect  database.Dialect
		desc     Descriptor
		wantText string
		wantArgs []any
	}{
		{
			name:     "all rows",
			dialect:  database.MySQL,
			wantText: "SELECT * FROM `clients`",
		},
		{
			name:     "filters sorted and joined with AND",
			dialect:  database.MySQL,
			desc:     Descriptor{Filters: map[string]any{"phone": "123", "name": "Ana"}},
			wantText: "SELECT * FROM `clients` WHERE `name` = ? AND `phone` = ?",
			wantArgs: []any{"Ana", "123"},
		},
		{
			name:     "postgres numbers placeholders",
			dialect:  database.Postgres,
			desc:     Descriptor{Filters: map[string]any{"b": 2, "a": 1}},
			wantText: `SELECT * FROM "clients" WHERE "a" = $1 AND "b" = $2`,
			wantArgs: []any{1, 2},
		},
		{
			name:     "order limit offset",
			dialect:  database.SQLite,
			desc:     Descriptor{Order: Order{Column: "name", Direction: Descending}, Limit: 3, Offset: 2},
			wantText: "SELECT * FROM `clients` ORDER BY `name` DESC LIMIT 3 OFFSET 2",
		},
		{
			name:     "ascending order",
			dialect:  database.SQLite,
			desc:     Descriptor{Order: Order{Column: "name"}},
			wantText: "SELECT * FROM `clients` ORDER BY `name` ASC",
		},
		{
			name:     "offset without limit on mysql",
			dialect:  database.MySQL,
			desc:     Descriptor{Offset: 5},
			wantText: "SELECT * FROM `clients` LIMIT 18446744073709551615 OFFSET 5",
		},
		{
			name:     "offset without limit on sqlite",
			dialect:  database.SQLite,
			desc:     Descriptor{Offset: 5},
			wantText: "SELECT * FROM `clients` LIMIT -1 OFFSET 5",
		},
		{
			name:     "offset without limit on postgres",
			dialect:  database.Postgres,
			desc:     Descriptor{Offset: 5},
			wantText: `SELECT * FROM "clients" OFFSET 5`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := buildSelect(tt.dialect, "*", "clients", tt.desc)
			if err != nil {
				t.Fatalf("buildSelect() error = %v", err)
			}
			if stmt.Text != tt.wantText {
				t.Errorf("Text = %s\nwant   %s", stmt.Text, tt.wantText)
			}
			if len(stmt.Args) != len(tt.wantArgs) || (len(tt.wantArgs) > 0 && !reflect.DeepEqual(stmt.Args, tt.wantArgs)) {
				t.Errorf("Args = %v, want %v", stmt.Args, tt.wantArgs)
			}
		})
	}
}

func TestBuildSelect_DeterministicText(t *testing.T) {
	filters := map[string]any{"e": 5, "a": 1, "d": 4, "c": 3, "b": 2}
	first, err := buildSelect(database.MySQL, "*", "t", Descriptor{Filters: filters})
	if err != nil {
		t.Fatalf("buildSelect() error = %v", err)
	}
	for i := 0; i < 50; i++ {
		again, _ := buildSelect(database.MySQL, "*", "t", Descriptor{Filters: filters})
		if again.Text != first.Text || !reflect.DeepEqual(again.Args, first.Args) {
			t.Fatalf("statement changed between builds: %q vs %q", first.Text, again.Text)
		}
	}
}

func TestBuildSelect_RejectsIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		table string
		desc  Descriptor
	}{
		{"table injection", "clients; DROP TABLE clients", Descriptor{}},
		{"quoted table", "`clients`", Descriptor{}},
		{"empty table", "", Descriptor{}},
		{"filter column", "clients", Descriptor{Filters: map[string]any{"id = 1 OR 1": 1}}},
		{"order column", "clients", Descriptor{Order: Order{Column: "name DESC, (SELECT 1)"}}},
		{"leading digit", "1clients", Descriptor{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildSelect(database.MySQL, "*", tt.table, tt.desc)
			if !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("buildSelect() error = %v, want ErrInvalidIdentifier", err)
			}
		})
	}
}

func TestBuildInsert(t *testing.T) {
	rec := Record{"phone": "123", "name": "Ana"}

	t.Run("mysql", func(t *testing.T) {
		stmt, err := buildInsert(database.MySQL, "clients", rec, "id")
		if err != nil {
			t.Fatalf("buildInsert() error = %v", err)
		}
		want := "INSERT INTO `clients` (`name`, `phone`) VALUES (?, ?)"
		if stmt.Text != want {
			t.Errorf("Text = %s, want %s", stmt.Text, want)
		}
		if !reflect.DeepEqual(stmt.Args, []any{"Ana", "123"}) {
			t.Errorf("Args = %v", stmt.Args)
		}
	})

	t.Run("postgres returning", func(t *testing.T) {
		stmt, err := buildInsert(database.Postgres, "clients", rec, "id")
		if err != nil {
			t.Fatalf("buildInsert() error = %v", err)
		}
		want := `INSERT INTO "clients" ("name", "phone") VALUES ($1, $2) RETURNING "id"`
		if stmt.Text != want {
			t.Errorf("Text = %s, want %s", stmt.Text, want)
		}
	})

	t.Run("empty record", func(t *testing.T) {
		if _, err := buildInsert(database.MySQL, "clients", Record{}, "id"); !errors.Is(err, ErrEmptyRecord) {
			t.Errorf("buildInsert() error = %v, want ErrEmptyRecord", err)
		}
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Run("set args precede where args", func(t *testing.T) {
		stmt, err := buildUpdate(database.Postgres, "clients",
			Record{"name": "x", "phone": "999"},
			map[string]any{"id": 5})
		if err != nil {
			t.Fatalf("buildUpdate() error = %v", err)
		}
		want := `UPDATE "clients" SET "name" = $1, "phone" = $2 WHERE "id" = $3`
		if stmt.Text != want {
			t.Errorf("Text = %s, want %s", stmt.Text, want)
		}
		if !reflect.DeepEqual(stmt.Args, []any{"x", "999", 5}) {
			t.Errorf("Args = %v", stmt.Args)
		}
	})

	t.Run("same column in record and filter", func(t *testing.T) {
		stmt, err := buildUpdate(database.MySQL, "clients",
			Record{"phone": "new"},
			map[string]any{"phone": "old"})
		if err != nil {
			t.Fatalf("buildUpdate() error = %v", err)
		}
		want := "UPDATE `clients` SET `phone` = ? WHERE `phone` = ?"
		if stmt.Text != want {
			t.Errorf("Text = %s, want %s", stmt.Text, want)
		}
		if !reflect.DeepEqual(stmt.Args, []any{"new", "old"}) {
			t.Errorf("Args = %v", stmt.Args)
		}
	})

	t.Run("empty filters", func(t *testing.T) {
		_, err := buildUpdate(database.MySQL, "clients", Record{"name": "x"}, nil)
		if !errors.Is(err, ErrEmptyFilter) {
			t.Errorf("buildUpdate() error = %v, want ErrEmptyFilter", err)
		}
	})

	t.Run("empty record", func(t *testing.T) {
		_, err := buildUpdate(database.MySQL, "clients", nil, map[string]any{"id": 1})
		if !errors.Is(err, ErrEmptyRecord) {
			t.Errorf("buildUpdate() error = %v, want ErrEmptyRecord", err)
		}
	})
}

func TestBuildDelete(t *testing.T) {
	stmt, err := buildDelete(database.SQLite, "clients", map[string]any{"id": 5})
	if err != nil {
		t.Fatalf("buildDelete() error = %v", err)
	}
	if want := "DELETE FROM `clients` WHERE `id` = ?"; stmt.Text != want {
		t.Errorf("Text = %s, want %s", stmt.Text, want)
	}

	if _, err := buildDelete(database.SQLite, "clients", map[string]any{}); !errors.Is(err, ErrEmptyFilter) {
		t.Errorf("buildDelete() error = %v, want ErrEmptyFilter", err)
	}
}
