package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

func printUsage() {
	fmt.Print(`Usage: admin COMMAND [OPTIONS]

Commands:
  migratedb     create the database (if needed) and run pending migrations
  addstudent    register a student account (prompts for a password)
  fixyears      normalize legacy assignment target-year labels
  help          show this message

Options for addstudent:
  -name   string  student name (required)
  -email  string  student email (required)
  -year   string  student year: 1st, 2nd, 3rd or 4th (required)
`)
}

func run(std *log.Logger, args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	workDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting working directory")
	}
	conf, err := core.NewConfig(workDir)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	switch cmd := args[0]; cmd {
	case "migratedb":
		return migrateDB(std, conf)
	case "addstudent":
		return addStudent(std, conf, args[1:])
	case "fixyears":
		return fixYears(std, conf)
	case "help":
		printUsage()
		return nil
	default:
		printUsage()
		return errors.Errorf("unknown command %q", cmd)
	}
}
