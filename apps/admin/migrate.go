package main

import (
	"log"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/storage/database"
)

func migrateDB(std *log.Logger, conf *core.Config) error {
	if err := database.CreateIfNotExist(conf); err != nil {
		return errors.Wrap(err, "creating database")
	}

	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = database.Migrate(db.DB); err != nil {
		return err
	}
	std.Println("migrations complete")
	return nil
}
