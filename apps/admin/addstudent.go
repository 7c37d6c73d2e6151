package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlxrepos"
)

func addStudent(std *log.Logger, conf *core.Config, args []string) error {
	fs := flag.NewFlagSet("addstudent", flag.ExitOnError)
	name := fs.String("name", "", "student name")
	email := fs.String("email", "", "student email")
	year := fs.String("year", "", "student year: 1st, 2nd, 3rd or 4th")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pwd, err := promptPassword()
	if err != nil {
		return err
	}

	db, err := database.Open(conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	svc := student.NewService(sqlxrepos.NewStudentRepository(db), nil, conf.AppName)
	validate, _ := core.NewValidators()

	ns := student.NewStudent{Name: *name, Email: *email, Password: pwd, Year: *year}
	if err = ns.Validate(validate, svc); err != nil {
		return errors.Wrap(err, "invalid student")
	}

	st, err := svc.Create(context.Background(), ns)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	std.Printf("student %s (%s) created\n", st.Name, st.ID)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwd, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "reading password confirmation")
	}

	if string(pwd) != string(confirm) {
		return "", errors.New("passwords do not match")
	}
	return string(pwd), nil
}
