package tester

import (
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
)

// SetupDocker starts the backing services integration tests need: postgres
// for the lifecycle store, minio for document bytes and clamav for scanning.
// The returned func tears everything down.
func SetupDocker() (func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		logrus.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		logrus.Fatalf("Could not connect to Docker: %s", err)
	}

	// run database
	db, err := pool.Run("postgres", "16", []string{
		"POSTGRES_USER=docriver",
		"POSTGRES_PASSWORD=docriver",
		"POSTGRES_DB=docriver",
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	// run object store
	minio, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        "latest",
		Env: []string{
			"MINIO_ROOT_USER=minioadmin",
			"MINIO_ROOT_PASSWORD=minioadmin",
		},
		Cmd: []string{"server", "/data"},
		ExposedPorts: []string{
			"9000",
		},
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	// run virus scanner
	clamav, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "clamav/clamav",
		Tag:        "latest",
		ExposedPorts: []string{
			"3310",
		},
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	return func() {
		for _, resource := range []*dockertest.Resource{db, minio, clamav} {
			if err := pool.Purge(resource); err != nil {
				logrus.Errorf("Could not purge resource: %s", err)
			}
		}
	}, nil
}
