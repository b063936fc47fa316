package database

import (
	"errors"
	"testing"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"driver dsn untouched", "u:p@tcp(db:3306)/hotels?parseTime=true", "", "", "u:p@tcp(db:3306)/hotels?parseTime=true"},
		{"url form", "mysql://u:p@db:3306/hotels", "", "", "u:p@tcp(db:3306)/hotels?charset=utf8mb4&parseTime=true"},
		{"jdbc with overrides", "jdbc:mysql://db:3306/hotels?useSSL=false&useUnicode=true", "root", "secret", "root:secret@tcp(db:3306)/hotels?charset=utf8mb4&parseTime=true&tls=false"},
		{"empty", "  ", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMySQLDSN(tc.in, tc.user, tc.pass); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("u:secret@tcp(db:3306)/x"); got != "u:****@tcp(db:3306)/x" {
		t.Fatalf("mask: %q", got)
	}
	if got := MaskDSN("postgres://u:secret@db/x"); got != "postgres://u:****@db/x" {
		t.Fatalf("mask url: %q", got)
	}
	if got := MaskDSN("postgres://u@db/x"); got != "postgres://u@db/x" {
		t.Fatalf("mask no password: %q", got)
	}
	if got := MaskDSN("file::memory:"); got != "file::memory:" {
		t.Fatalf("mask plain: %q", got)
	}
}

func TestSqliteDSNEnablesForeignKeys(t *testing.T) {
	if got := sqliteDSN("file:x?mode=memory"); got != "file:x?mode=memory&_foreign_keys=1" {
		t.Fatalf("got %q", got)
	}
	if got := sqliteDSN("file:x?_fk=1"); got != "file:x?_fk=1" {
		t.Fatalf("got %q", got)
	}
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("want ErrUnsupportedDriver, got %v", err)
	}
}

func TestNewGormSqlite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:dbtest?mode=memory&cache=shared", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer Close(db)
	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign keys off")
	}
}
