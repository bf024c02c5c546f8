package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		input   string
		year    int
		month   int
		day     int
		wantErr bool
	}{
		{input: "2001-06-10", year: 2001, month: 6, day: 10},
		{input: "1999-12-31", year: 1999, month: 12, day: 31},
		{input: "0000-01-01", year: 0, month: 1, day: 1},
		{input: "2020-02-30", year: 2020, month: 2, day: 30}, // no calendar check
		{input: "13-40-2020", wantErr: true},
		{input: "2020-13-01", wantErr: true},
		{input: "2020-00-10", wantErr: true},
		{input: "2020-01-32", wantErr: true},
		{input: "2020/01/01", wantErr: true},
		{input: "2020-1-1", wantErr: true},
		{input: "hello", wantErr: true},
		{input: "", wantErr: true},
		{input: "2020-01-01 ", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			year, month, day, err := ParseDate(c.input)
			if c.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDate(%q) err = %v, want ErrInvalidDate", c.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) err = %v", c.input, err)
			}
			if year != c.year || month != c.month || day != c.day {
				t.Errorf("ParseDate(%q) = (%d, %d, %d), want (%d, %d, %d)",
					c.input, year, month, day, c.year, c.month, c.day)
			}
		})
	}
}

func TestFileStoreSetGet(t *testing.T) {
	s := openTemp(t)

	age := 24
	if err := s.Set("u1", "2001-06-10", &age); err != nil {
		t.Fatal(err)
	}

	rec, ok := s.Get("u1")
	if !ok {
		t.Fatal("Get(u1) not found after Set")
	}
	if rec.Date != "2001-06-10" {
		t.Errorf("Date = %q, want %q", rec.Date, "2001-06-10")
	}
	if rec.Age == nil || *rec.Age != 24 {
		t.Errorf("Age = %v, want 24", rec.Age)
	}
	if m, d := rec.MonthDay(); m != 6 || d != 10 {
		t.Errorf("MonthDay() = (%d, %d), want (6, 10)", m, d)
	}
	if y := rec.Year(); y != 2001 {
		t.Errorf("Year() = %d, want 2001", y)
	}

	if _, ok := s.Get("nobody"); ok {
		t.Error("Get(nobody) found a record")
	}
}

func TestFileStoreRejectsInvalidDate(t *testing.T) {
	s := openTemp(t)
	if err := s.Set("u1", "2001-06-10", nil); err != nil {
		t.Fatal(err)
	}

	for _, input := range []string{"13-40-2020", "hello", "2020/01/01", "10-06-2001"} {
		if err := s.Set("u2", input, nil); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Set(%q) err = %v, want ErrInvalidDate", input, err)
		}
	}

	// rejected writes must leave the store untouched
	if s.Len() != 1 {
		t.Errorf("Len() = %d after rejected writes, want 1", s.Len())
	}
	if _, ok := s.Get("u2"); ok {
		t.Error("rejected Set still created a record")
	}
}

func TestFileStoreListOrder(t *testing.T) {
	s := openTemp(t)
	for _, e := range []struct{ id, date string }{
		{"xmas", "1990-12-25"},
		{"newyear", "1995-01-01"},
		{"mid-jan", "2000-01-15"},
	} {
		if err := s.Set(e.id, e.date, nil); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"newyear", "mid-jan", "xmas"}
	if len(entries) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(entries), len(want))
	}
	for i, id := range want {
		if entries[i].UserID != id {
			t.Errorf("List()[%d] = %s, want %s", i, entries[i].UserID, id)
		}
	}
}

func TestFileStoreListTiesKeepInsertionOrder(t *testing.T) {
	s := openTemp(t)
	// same month/day, different years, inserted b then a
	if err := s.Set("b", "1992-07-04", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("a", "1988-07-04", nil); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].UserID != "b" || entries[1].UserID != "a" {
		t.Errorf("tie order = [%s, %s], want [b, a]", entries[0].UserID, entries[1].UserID)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	s := openTemp(t)
	if err := s.Set("u1", "2001-06-10", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("u1", "1999-03-02", nil); err != nil {
		t.Fatal(err)
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d after double Set, want 1", s.Len())
	}
	rec, _ := s.Get("u1")
	if rec.Date != "1999-03-02" {
		t.Errorf("Date = %q after overwrite, want %q", rec.Date, "1999-03-02")
	}
}

func TestFileStoreRemove(t *testing.T) {
	s := openTemp(t)
	if err := s.Set("u1", "2001-06-10", nil); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Remove("u1")
	if err != nil || !ok {
		t.Fatalf("Remove(u1) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.Remove("u1")
	if err != nil || ok {
		t.Fatalf("second Remove(u1) = (%v, %v), want (false, nil)", ok, err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Remove, want 0", s.Len())
	}
}

func TestFileStoreReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "birthdays.json")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	age := 30
	inserts := []struct {
		id   string
		date string
		age  *int
	}{
		{"u-dec", "1990-12-25", nil},
		{"u-jul-b", "1992-07-04", &age},
		{"u-jul-a", "1988-07-04", nil},
		{"u-jan", "1995-01-01", nil},
	}
	for _, in := range inserts {
		if err := s.Set(in.id, in.date, in.age); err != nil {
			t.Fatal(err)
		}
	}

	// simulate a restart
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range inserts {
		rec, ok := s2.Get(in.id)
		if !ok {
			t.Fatalf("Get(%s) missing after reload", in.id)
		}
		if rec.Date != in.date {
			t.Errorf("Get(%s).Date = %q after reload, want %q", in.id, rec.Date, in.date)
		}
		if (rec.Age == nil) != (in.age == nil) {
			t.Errorf("Get(%s).Age = %v after reload, want %v", in.id, rec.Age, in.age)
		}
	}

	// insertion order (and so tie order) survives the restart
	entries, err := s2.List()
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.UserID
	}
	want := []string{"u-jan", "u-jul-b", "u-jul-a", "u-dec"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() after reload = %v, want %v", got, want)
		}
	}
}

func TestFileStoreReadsLegacyStrings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "birthdays.json")
	legacy := `{
  "u1": "2001-06-10",
  "u2": {"date": "1999-12-31", "age": 26}
}`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	rec, ok := s.Get("u1")
	if !ok || rec.Date != "2001-06-10" || rec.Age != nil {
		t.Errorf("legacy entry = (%+v, %v), want bare date with nil age", rec, ok)
	}
	rec, ok = s.Get("u2")
	if !ok || rec.Date != "1999-12-31" || rec.Age == nil || *rec.Age != 26 {
		t.Errorf("object entry = (%+v, %v), want date with age 26", rec, ok)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "birthdays.json")

	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not json at all"},
		{name: "array", body: `["u1", "u2"]`},
		{name: "truncated", body: `{"u1": {"date": "2001-`},
		{name: "missing date", body: `{"u1": {"age": 5}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(c.body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Open(path)
			var corrupt *CorruptError
			if !errors.As(err, &corrupt) {
				t.Fatalf("Open() err = %v, want *CorruptError", err)
			}
			if corrupt.Path != path {
				t.Errorf("CorruptError.Path = %q, want %q", corrupt.Path, path)
			}
		})
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	s := openTemp(t)
	if s.Len() != 0 {
		t.Errorf("Len() = %d for fresh store, want 0", s.Len())
	}
	entries, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("List() = %v for fresh store, want empty", entries)
	}
}

func openTemp(t *testing.T) *FileStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "birthdays.json"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}
