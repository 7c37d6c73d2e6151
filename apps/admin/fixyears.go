package main

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlxrepos"
	"github.com/trezcool/darasa/storage/files"
)

func fixYears(std *log.Logger, conf *core.Config) error {
	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	fileStore, err := files.NewLocalStore(conf.Uploads.Dir)
	if err != nil {
		return errors.Wrap(err, "setting up file store")
	}
	svc := assignment.NewService(sqlxrepos.NewAssignmentRepository(db), fileStore)

	report, err := svc.FixTargetYears(context.Background())
	if err != nil {
		return err
	}

	std.Printf("fixed %d out of %d assignments\n", report.Fixed, report.Total)
	for _, res := range report.Results {
		std.Printf("  %s (%s): %q -> %q\n", res.Title, res.ID, res.Original, res.Fixed)
	}
	return nil
}
