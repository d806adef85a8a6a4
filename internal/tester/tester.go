package tester

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/docriver/gateway/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testPath = "../../.test/"
)

var (
	db *gorm.DB
	// one workspace per test binary, packages may run in parallel
	root = filepath.Join(testPath, strconv.Itoa(os.Getpid()))
)

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	for _, dir := range []string{"db", "untrusted", "raw"} {
		err := os.MkdirAll(filepath.Join(root, dir), os.ModePerm)
		if err != nil {
			panic(err)
		}
	}

	var err error
	db, err = gorm.Open(sqlite.Open(filepath.Join(root, "db", "docriver.db")), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

// UntrustedMount is the staging area used by service tests.
func UntrustedMount() string {
	return filepath.Join(root, "untrusted")
}

// RawMount is the shared raw-file area used by service tests.
func RawMount() string {
	return filepath.Join(root, "raw")
}

func RemoveDBFile() {
	err := os.RemoveAll(root)
	if err != nil {
		panic(err)
	}
}
