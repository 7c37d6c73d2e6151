package student

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrNameExists  = errors.New("a student with this name already exists")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		// CheckUniqueness fails with ErrNameExists/ErrEmailExists when another
		// student (not in excluded) holds the given name or email.
		CheckUniqueness(ctx context.Context, name, email string, excluded ...Student) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		GetStudentByName(ctx context.Context, name string) (Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		appName string
	}
)

func NewService(repo Repository, mailSvc core.EmailService, appName string) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, appName: appName}
}

func (svc *Service) CheckUniqueness(name, email string, excluded ...Student) error {
	if err := svc.repo.CheckUniqueness(context.Background(), name, email, excluded...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrNameExists:
			field = "name"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		Name:      ns.Name,
		Email:     ns.Email,
		Year:      Year(ns.Year),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "setting password")
	}

	st, err := svc.repo.CreateStudent(ctx, st)
	if err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.sendWelcomeEmail(st)
	return st, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Student, error) {
	return svc.repo.GetStudentByName(ctx, core.CleanString(name))
}

// Authenticate checks a student's credentials. It fails with ErrNotFound
// whether the student is unknown or the password mismatches.
func (svc *Service) Authenticate(ctx context.Context, name, pwd string) (Student, error) {
	st, err := svc.GetByName(ctx, name)
	if err != nil {
		return Student{}, err
	}
	if err = st.CheckPassword(pwd); err != nil {
		return Student{}, ErrNotFound
	}
	return st, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	st := Student{
		ID:        id,
		Name:      us.Name,
		Email:     us.Email,
		Year:      Year(us.Year),
		UpdatedAt: time.Now().UTC(),
	}
	if us.Password != "" {
		if err := st.SetPassword(us.Password); err != nil {
			return Student{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) sendWelcomeEmail(st Student) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: st.Name, Address: st.Email}},
		Subject: "Welcome!",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s account has been created. "+
				"Log in to see the notices and assignments for your class (%s year).",
			st.Name, svc.appName, st.Year,
		),
	})
}
